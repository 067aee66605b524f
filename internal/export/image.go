package export

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/phrictl/internal/sim"
	"github.com/san-kum/phrictl/internal/viz"
)

// ImageFormats lists the file extensions SamplesToImage can write.
var ImageFormats = []string{".png", ".svg", ".pdf", ".jpg", ".eps"}

// ImageOptions sizes an image plot in inches.
type ImageOptions struct {
	Title  string
	Width  float64
	Height float64
}

func (o ImageOptions) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 8
	}
	if h <= 0 {
		h = 4
	}
	return vg.Length(w) * vg.Inch, vg.Length(h) * vg.Inch
}

// SamplesToImage plots the named series of a run against time and saves the
// plot to file. The format follows the file extension.
func SamplesToImage(samples []sim.Sample, names []string, file string, o ImageOptions) error {
	if len(samples) < 2 {
		return errors.Errorf("export: need at least 2 samples, got %d", len(samples))
	}
	if len(names) == 0 {
		return errors.Wrap(viz.ErrUnknownSeries, "no series")
	}
	ext := strings.ToLower(filepath.Ext(file))
	if !supported(ext) {
		return errors.Errorf("export: unsupported image format %q", ext)
	}

	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = "time (s)"
	p.Legend.Top = true

	for i, name := range names {
		values, err := viz.Series(samples, name)
		if err != nil {
			return err
		}
		pts := make(plotter.XYs, len(samples))
		for j := range samples {
			pts[j].X = samples[j].Time
			pts[j].Y = values[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "series %q", name)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Add(plotter.NewGrid())

	w, h := o.size()
	return errors.Wrapf(p.Save(w, h, file), "save %s", file)
}

func supported(ext string) bool {
	for _, f := range ImageFormats {
		if f == ext {
			return true
		}
	}
	return false
}

// Package export writes run plots as SVG and raster images.
package export

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/san-kum/phrictl/internal/viz"
)

// CanvasToSVG draws every lit braille dot of canvas as a circle, scale
// pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.Height*4; y++ {
		for x := 0; x < canvas.Width*2; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// PathToSVG draws the polyline (xs[i], ys[i]) scaled into a width x height
// image with a 10% margin, y pointing up.
func PathToSVG(xs, ys []float64, width, height int, stroke string) (string, error) {
	if len(xs) != len(ys) {
		return "", errors.Errorf("export: %d x values for %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return "", errors.Errorf("export: need at least 2 points, got %d", len(xs))
	}
	view := viz.Bounds(xs, ys, 0.1)
	rangeX, rangeY := view.MaxX-view.MinX, view.MaxY-view.MinY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="`, width, height, width, height, stroke)
	for i := range xs {
		x := (xs[i] - view.MinX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-view.MinY)/rangeY*float64(height)
		cmd := "L"
		if i == 0 {
			cmd = "M"
		} else {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s%.1f,%.1f", cmd, x, y)
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String(), nil
}

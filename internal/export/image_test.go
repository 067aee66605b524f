package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"github.com/san-kum/phrictl/internal/sim"
	"github.com/san-kum/phrictl/internal/viz"
)

func rampSamples(n int) []sim.Sample {
	samples := make([]sim.Sample, n)
	for i := range samples {
		samples[i].Time = float64(i) * 0.01
		samples[i].ScalingFactor = float64(i) / float64(n)
		samples[i].Position.X = 0.1 * float64(i)
	}
	return samples
}

func TestSamplesToImage(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "run.svg")
	err := SamplesToImage(rampSamples(20), []string{"x", "scaling"}, file, ImageOptions{Title: "ramp"})
	test.That(t, err, test.ShouldBeNil)
	data, err := os.ReadFile(file)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "<svg")

	png := filepath.Join(dir, "run.png")
	test.That(t, SamplesToImage(rampSamples(20), []string{"force"}, png, ImageOptions{Width: 4, Height: 3}), test.ShouldBeNil)
	info, err := os.Stat(png)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}

func TestSamplesToImageErrors(t *testing.T) {
	dir := t.TempDir()
	err := SamplesToImage(rampSamples(1), []string{"x"}, filepath.Join(dir, "a.png"), ImageOptions{})
	test.That(t, err, test.ShouldNotBeNil)

	err = SamplesToImage(rampSamples(5), nil, filepath.Join(dir, "a.png"), ImageOptions{})
	test.That(t, errors.Is(err, viz.ErrUnknownSeries), test.ShouldBeTrue)

	err = SamplesToImage(rampSamples(5), []string{"bogus"}, filepath.Join(dir, "a.png"), ImageOptions{})
	test.That(t, errors.Is(err, viz.ErrUnknownSeries), test.ShouldBeTrue)

	err = SamplesToImage(rampSamples(5), []string{"x"}, filepath.Join(dir, "a.txt"), ImageOptions{})
	test.That(t, err, test.ShouldNotBeNil)
}

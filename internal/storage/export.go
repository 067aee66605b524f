package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/phrictl/internal/sim"
)

type ExportData struct {
	Meta    RunMetadata  `json:"meta"`
	Steps   int          `json:"steps"`
	Samples []sim.Sample `json:"samples"`
}

// ExportJSON writes a run and its samples to path, or to stdout when path
// is "-".
func ExportJSON(path string, meta RunMetadata, samples []sim.Sample) error {
	var out io.Writer = os.Stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	data := ExportData{
		Meta:    meta,
		Steps:   len(samples),
		Samples: samples,
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/san-kum/phrictl/internal/sim"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var ErrMalformed = errors.New("storage: malformed samples file")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Robot      string             `json:"robot"`
	Kinematics string             `json:"kinematics"`
	Joints     int                `json:"joints"`
	Integrator string             `json:"integrator"`
	Sync       string             `json:"sync"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Cycles     int                `json:"cycles"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes the run metadata and samples to a new run directory and
// returns its ID.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	meta.Timestamp = time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, meta.Timestamp.UnixMilli())
	meta.Cycles = result.Cycles
	meta.Metrics = result.Metrics
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := writeSamples(w, result.Samples); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

var fixedColumns = []string{
	"time", "x", "y", "z",
	"vx", "vy", "vz", "wx", "wy", "wz",
	"fx", "fy", "fz", "tx", "ty", "tz",
	"scaling",
}

func header(joints int) []string {
	h := append([]string(nil), fixedColumns...)
	for i := 0; i < joints; i++ {
		h = append(h, fmt.Sprintf("q%d", i))
	}
	for i := 0; i < joints; i++ {
		h = append(h, fmt.Sprintf("dq%d", i))
	}
	return h
}

func writeSamples(w *csv.Writer, samples []sim.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	joints := len(samples[0].Joints)
	if err := w.Write(header(joints)); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	row := make([]string, 0, len(fixedColumns)+2*joints)
	for i := range samples {
		s := &samples[i]
		row = row[:0]
		row = append(row, format(s.Time), format(s.Position.X), format(s.Position.Y), format(s.Position.Z))
		for _, v := range s.Command {
			row = append(row, format(v))
		}
		for _, v := range s.Wrench {
			row = append(row, format(v))
		}
		row = append(row, format(s.ScalingFactor))
		for _, v := range s.Joints {
			row = append(row, format(v))
		}
		for _, v := range s.JointCommand {
			row = append(row, format(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns the metadata of every stored run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "run %q", runID)
	}
	return &meta, nil
}

// LoadSamples reads back the samples of a run.
func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "run %q", runID)
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	joints := 0
	for _, col := range records[0] {
		if strings.HasPrefix(col, "q") {
			joints++
		}
	}
	if len(records[0]) != len(fixedColumns)+2*joints {
		return nil, errors.Wrapf(ErrMalformed, "run %q: %d columns", runID, len(records[0]))
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for line, record := range records[1:] {
		values := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformed, "run %q line %d: %v", runID, line+2, err)
			}
			values[j] = v
		}

		var smp sim.Sample
		smp.Time = values[0]
		smp.Position = r3.Vector{X: values[1], Y: values[2], Z: values[3]}
		copy(smp.Command[:], values[4:10])
		copy(smp.Wrench[:], values[10:16])
		smp.ScalingFactor = values[16]
		n := len(fixedColumns)
		smp.Joints = values[n : n+joints]
		smp.JointCommand = values[n+joints:]
		samples = append(samples, smp)
	}
	return samples, nil
}

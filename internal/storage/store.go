// Package storage persists headless runs under a data directory, one
// directory per run holding metadata.json, stats.csv and snapshot.json.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/quantasim/internal/config"
	"github.com/san-kum/quantasim/internal/export"
	"github.com/san-kum/quantasim/internal/particle"
	"github.com/san-kum/quantasim/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	statsFile    = "stats.csv"
	snapshotFile = "snapshot.json"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Dir is the directory of runID.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string                  `json:"id"`
	Scenario   string                  `json:"scenario"`
	Timestamp  time.Time               `json:"timestamp"`
	Seed       int64                   `json:"seed"`
	Dt         float64                 `json:"dt"`
	Duration   float64                 `json:"duration"`
	Steps      int                     `json:"steps"`
	FinalCount int                     `json:"finalCount"`
	Config     config.SimulationConfig `json:"config"`
	Metrics    map[string]float64      `json:"metrics"`
	Reactions  map[string]int          `json:"reactions"`
}

// RunInfo describes how a run was set up.
type RunInfo struct {
	Scenario string
	Seed     int64
	Dt       float64
	Duration float64
	Config   config.SimulationConfig
}

var statsHeader = []string{
	"time", "particles", "total_energy", "entropy", "avg_velocity",
	"max_velocity", "collisions", "collision_rate",
}

// Save writes result as a new run and returns its id.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	name := info.Scenario
	if name == "" {
		name = "custom"
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scenario:   name,
		Timestamp:  now,
		Seed:       info.Seed,
		Dt:         info.Dt,
		Duration:   info.Duration,
		Steps:      result.StepsTaken,
		FinalCount: len(result.Final),
		Config:     info.Config,
		Metrics:    result.Metrics,
		Reactions:  result.Reactions,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStats(filepath.Join(runDir, statsFile), result); err != nil {
		return "", err
	}

	last := result.Last().Stats
	doc := export.NewDocument(result.Final, result.Wells, &last, now)
	if err := export.WriteJSONFile(filepath.Join(runDir, snapshotFile), doc); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStats(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string(nil), statsHeader...)
	for _, t := range particle.Types {
		header = append(header, "count_"+string(t))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }
	for _, smp := range result.Samples {
		st := smp.Stats
		row := []string{
			strconv.FormatFloat(smp.Time, 'f', 6, 64),
			strconv.Itoa(st.ParticleCount),
			format(st.TotalEnergy),
			format(st.Entropy),
			format(st.AvgVelocity),
			format(st.MaxVelocity),
			strconv.Itoa(st.TotalCollisions),
			format(st.CollisionRate),
		}
		for _, t := range particle.Types {
			row = append(row, strconv.Itoa(smp.Counts[t]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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
	data, err := s.read(runID, metadataFile)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSnapshot reads the final population of a run.
func (s *Store) LoadSnapshot(runID string) (*export.Document, error) {
	if _, err := s.read(runID, snapshotFile); err != nil {
		return nil, err
	}
	return export.ReadJSONFile(filepath.Join(s.Dir(runID), snapshotFile))
}

func (s *Store) read(runID, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return data, err
}

// Series is the stats table of a run, one column per field.
type Series struct {
	Columns []string
	Times   []float64
	Values  [][]float64 // per row, excluding time
}

// Column returns the values of the named column, or nil when absent.
func (s *Series) Column(name string) []float64 {
	idx := -1
	for i, c := range s.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(s.Values))
	for i, row := range s.Values {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), statsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	series := &Series{}
	if len(records) == 0 {
		return series, nil
	}
	series.Columns = records[0][1:]

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		series.Times = append(series.Times, t)

		row := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				val = 0
			}
			row = append(row, val)
		}
		series.Values = append(series.Values, row)
	}

	return series, nil
}

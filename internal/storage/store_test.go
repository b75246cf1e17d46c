package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/quantasim/internal/config"
	"github.com/san-kum/quantasim/internal/engine"
	"github.com/san-kum/quantasim/internal/particle"
	"github.com/san-kum/quantasim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Samples: []sim.Sample{
			{Time: 0, Stats: engine.Stats{ParticleCount: 2, TotalEnergy: 1.5}, Counts: map[particle.Type]int{particle.Photon: 2}},
			{Time: 0.01, Stats: engine.Stats{ParticleCount: 1, TotalEnergy: 1.25, TotalCollisions: 1}, Counts: map[particle.Type]int{particle.Photon: 1}},
		},
		Metrics:    map[string]float64{"energy": 1.5},
		Reactions:  map[string]int{"elastic": 1},
		Final:      []particle.Particle{{ID: "p", Type: particle.Photon, X: 1, Y: 2, Size: 2}},
		StepsTaken: 1,
	}
}

func testInfo() RunInfo {
	return RunInfo{Scenario: "bigbang", Seed: 42, Dt: 0.01, Duration: 1.0, Config: config.DefaultSimulation()}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Scenario != "bigbang" {
		t.Errorf("expected scenario 'bigbang', got '%s'", meta.Scenario)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Metrics["energy"] != 1.5 {
		t.Errorf("expected energy 1.5, got %f", meta.Metrics["energy"])
	}
	if meta.Config.ParticleCount[particle.Neutrino] != 1394 {
		t.Errorf("config not persisted: %+v", meta.Config.ParticleCount)
	}
	if meta.Steps != 1 || meta.FinalCount != 1 || meta.Reactions["elastic"] != 1 {
		t.Errorf("unexpected metadata %+v", meta)
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(series.Times) != 2 {
		t.Errorf("expected 2 rows, got %d", len(series.Times))
	}
	energy := series.Column("total_energy")
	if len(energy) != 2 || energy[1] != 1.25 {
		t.Errorf("unexpected energy column %v", energy)
	}
	if photons := series.Column("count_photon"); photons[0] != 2 {
		t.Errorf("unexpected photon column %v", photons)
	}
	if series.Column("missing") != nil {
		t.Error("missing column should be nil")
	}

	doc, err := st.LoadSnapshot(runID)
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if doc.Metadata.ParticleCount != 1 || doc.Statistics.TotalCollisions != 1 {
		t.Errorf("unexpected snapshot %+v", doc.Metadata)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	info := testInfo()
	info.Scenario = ""
	if _, err := st.Save(info, testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(testInfo(), testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Scenario != "custom" {
		t.Errorf("expected oldest run first, got %s", runs[0].Scenario)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "stats.csv", "snapshot.json"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestStoreRunNotFound(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("load: expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadSeries("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("series: expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadSnapshot("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("snapshot: expected ErrRunNotFound, got %v", err)
	}
}

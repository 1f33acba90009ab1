package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/gwecho/internal/field"
	"github.com/san-kum/gwecho/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Snapshots: []sim.Snapshot{
			{Step: 1, Time: 0.1, Stats: field.Stats{TotalEnergy: 10, MaxAmplitude: 1}, Separation: 200e3},
			{Step: 2, Time: 0.2, Stats: field.Stats{TotalEnergy: 12, MaxAmplitude: 1.5}, Separation: 199e3, Merged: true},
		},
		Metrics:        map[string]float64{"mean_field_energy": 11},
		StepsTaken:     2,
		MergerDetected: true,
		MergerTime:     0.15,
	}
}

func TestSaveAndLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	runID, err := st.Save("inspiral", 0.1, sampleResult())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Label != "inspiral" {
		t.Errorf("label = %q, want inspiral", meta.Label)
	}
	if meta.Steps != 2 {
		t.Errorf("steps = %d, want 2", meta.Steps)
	}
	if !meta.MergerDetected || meta.MergerTime != 0.15 {
		t.Errorf("merger metadata = (%v, %v)", meta.MergerDetected, meta.MergerTime)
	}
	if meta.Metrics["mean_field_energy"] != 11 {
		t.Errorf("metrics not round-tripped: %v", meta.Metrics)
	}
}

func TestListSkipsJunk(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if _, err := st.Save("a", 0.1, sampleResult()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// stray file and a dir without metadata should be ignored
	if err := os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "empty_run"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nonexistent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("got %d runs, want 0", len(runs))
	}
}

func TestLoadSeries(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	runID, err := st.Save("series", 0.1, sampleResult())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	times, values, err := st.LoadSeries(runID, "total_energy")
	if err != nil {
		t.Fatalf("LoadSeries: %v", err)
	}
	if len(times) != 2 || len(values) != 2 {
		t.Fatalf("got %d/%d samples, want 2/2", len(times), len(values))
	}
	if times[0] != 0.1 || values[0] != 10 {
		t.Errorf("first sample = (%v, %v), want (0.1, 10)", times[0], values[0])
	}

	_, merged, err := st.LoadSeries(runID, "merged")
	if err != nil {
		t.Fatalf("LoadSeries merged: %v", err)
	}
	if merged[0] != 0 || merged[1] != 1 {
		t.Errorf("merged column = %v, want [0 1]", merged)
	}

	if _, _, err := st.LoadSeries(runID, "no_such_column"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, "quick", 0.05, sampleResult()); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out ExportData
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Label != "quick" || out.Steps != 2 || len(out.Snapshots) != 2 {
		t.Errorf("export round trip mismatch: %+v", out)
	}
}

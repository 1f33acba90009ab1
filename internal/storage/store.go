package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/gwecho/internal/sim"
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

type RunMetadata struct {
	ID             string             `json:"id"`
	Label          string             `json:"label"`
	Timestamp      time.Time          `json:"timestamp"`
	Dt             float64            `json:"dt"`
	Steps          int                `json:"steps"`
	MergerDetected bool               `json:"merger_detected"`
	MergerTime     float64            `json:"merger_time"`
	Metrics        map[string]float64 `json:"metrics"`
}

var snapshotHeader = []string{
	"time", "step",
	"max_amplitude", "total_energy", "max_gradient",
	"h_plus", "h_cross", "strain_amplitude",
	"separation", "orbital_frequency", "energy_radiated",
	"merged", "active_echoes",
}

// Save writes one run under baseDir/<label>_<unix>: metadata.json with the
// run summary and snapshots.csv with the recorded time series. It returns
// the generated run ID.
func (s *Store) Save(label string, dt float64, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", label, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:             runID,
		Label:          label,
		Timestamp:      time.Now(),
		Dt:             dt,
		Steps:          result.StepsTaken,
		MergerDetected: result.MergerDetected,
		MergerTime:     result.MergerTime,
		Metrics:        result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "snapshots.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(snapshotHeader); err != nil {
		return "", err
	}
	for _, snap := range result.Snapshots {
		if err := w.Write(snapshotRow(snap)); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func snapshotRow(snap sim.Snapshot) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return []string{
		f(snap.Time), strconv.Itoa(snap.Step),
		f(snap.Stats.MaxAmplitude), f(snap.Stats.TotalEnergy), f(snap.Stats.MaxGradient),
		f(snap.Strain.HPlus), f(snap.Strain.HCross), f(snap.Strain.Amplitude),
		f(snap.Separation), f(snap.OrbitalFrequency), f(snap.EnergyRadiated),
		strconv.FormatBool(snap.Merged), strconv.Itoa(snap.ActiveEchoes),
	}
}

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

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSeries reads one named column of snapshots.csv along with the time
// axis. Column names match the header written by Save.
func (s *Store) LoadSeries(runID, column string) (times, values []float64, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "snapshots.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	col := -1
	for i, name := range records[0] {
		if name == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, nil, fmt.Errorf("unknown column %q", column)
	}

	times = make([]float64, 0, len(records)-1)
	values = make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if col >= len(record) {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(record[col], 64)
		if err != nil {
			// boolean columns read as 0/1
			if record[col] == "true" {
				v = 1
			} else if record[col] == "false" {
				v = 0
			} else {
				continue
			}
		}
		times = append(times, t)
		values = append(values, v)
	}

	return times, values, nil
}

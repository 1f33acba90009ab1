package storage

import (
	"encoding/json"
	"os"

	"github.com/san-kum/gwecho/internal/sim"
)

type ExportData struct {
	Label          string             `json:"label"`
	Dt             float64            `json:"dt"`
	Steps          int                `json:"steps"`
	MergerDetected bool               `json:"merger_detected"`
	MergerTime     float64            `json:"merger_time"`
	Snapshots      []sim.Snapshot     `json:"snapshots"`
	Metrics        map[string]float64 `json:"metrics"`
}

// ExportJSON writes the full run, snapshots included, as indented JSON.
func ExportJSON(path, label string, dt float64, result *sim.Result) error {
	data := ExportData{
		Label:          label,
		Dt:             dt,
		Steps:          result.StepsTaken,
		MergerDetected: result.MergerDetected,
		MergerTime:     result.MergerTime,
		Snapshots:      result.Snapshots,
		Metrics:        result.Metrics,
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

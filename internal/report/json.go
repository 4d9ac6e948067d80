package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dicom-deidentifier/internal/deident"
)

// RunReport is the JSON audit artifact for one batch run: what ran, the
// aggregate outcome, and the full UID mapping table.
type RunReport struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Preset      string                   `json:"preset"`
	InputDir    string                   `json:"input_dir"`
	OutputDir   string                   `json:"output_dir"`
	Preview     bool                     `json:"preview"`
	Statistics  *deident.BatchStatistics `json:"statistics"`
	UIDMappings map[string]string        `json:"uid_mappings,omitempty"`
}

// WriteJSON persists the report with indented JSON, creating parent
// directories as needed.
func WriteJSON(path string, r *RunReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create report directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write report: %w", err)
	}
	return nil
}

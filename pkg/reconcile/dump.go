package reconcile

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/yurifrl/ynabsync/pkg/models"
)

type dumpEntry struct {
	Record   models.NormalizedRecord        `yaml:"record"`
	Original *models.DestinationTransaction `yaml:"original,omitempty"`
}

type dump struct {
	RunID       string                          `yaml:"run_id"`
	Normalized  []models.NormalizedRecord       `yaml:"normalized"`
	Destination []models.DestinationTransaction `yaml:"destination"`
	Changed     []dumpEntry                     `yaml:"changed"`
	Missing     []dumpEntry                     `yaml:"missing"`
	Ambiguities []Ambiguity                     `yaml:"ambiguities,omitempty"`
}

// Dump writes the intermediate state of a run as YAML for inspection.
func Dump(w io.Writer, runID string, result *Result, remote []models.DestinationTransaction) error {
	d := dump{
		RunID:       runID,
		Normalized:  result.Normalized,
		Destination: remote,
		Ambiguities: result.Ambiguities(),
	}
	for _, e := range result.Changed() {
		d.Changed = append(d.Changed, dumpEntry{Record: e.Record, Original: e.Original})
	}
	for _, e := range result.Missing() {
		d.Missing = append(d.Missing, dumpEntry{Record: e.Record})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode dump: %w", err)
	}
	return enc.Close()
}

// Package csv is the offline replay backend: it writes creations as a YNAB
// import file and date corrections as a checklist to apply by hand.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/ynabsync/pkg/amount"
	"github.com/yurifrl/ynabsync/pkg/plan"
)

type FilterFunc func(plan.Operation) bool

// Imports renders creations in the YNAB file import layout.
func Imports(ops []plan.Operation, filter FilterFunc) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Date", "Payee", "Memo", "Amount"}); err != nil {
		return nil, err
	}
	for _, op := range ops {
		if op.Kind != plan.Create || (filter != nil && !filter(op)) {
			continue
		}
		if err := w.Write([]string{op.Date, op.Payee, op.Memo, amount.Format(op.Amount)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Corrections renders date corrections, one transaction per line.
func Corrections(ops []plan.Operation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"TransactionID", "PreviousDate", "NewDate"}); err != nil {
		return nil, err
	}
	for _, op := range ops {
		if op.Kind != plan.UpdateDate {
			continue
		}
		if err := w.Write([]string{op.TransactionID, op.PreviousDate, op.NewDate}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Exporter writes <prefix>-import.csv and <prefix>-corrections.csv into a
// directory. Import ids already exported by this Exporter are written once;
// a file is only (re)written when it has rows.
type Exporter struct {
	dir      string
	prefix   string
	logger   *log.Logger
	exported map[string]bool
}

func NewExporter(dir, prefix string, logger *log.Logger) *Exporter {
	return &Exporter{
		dir:      dir,
		prefix:   prefix,
		logger:   logger,
		exported: make(map[string]bool),
	}
}

func (e *Exporter) ImportPath() string {
	return filepath.Join(e.dir, e.prefix+"-import.csv")
}

func (e *Exporter) CorrectionsPath() string {
	return filepath.Join(e.dir, e.prefix+"-corrections.csv")
}

func (e *Exporter) Apply(ctx context.Context, ops []plan.Operation) (*plan.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outcome := &plan.Outcome{}
	fresh := func(op plan.Operation) bool {
		if e.exported[op.ImportID] {
			outcome.Skipped++
			return false
		}
		e.exported[op.ImportID] = true
		outcome.Created++
		return true
	}

	imports, err := Imports(ops, fresh)
	if err != nil {
		return nil, fmt.Errorf("failed to render import file: %w", err)
	}
	corrections, err := Corrections(ops)
	if err != nil {
		return nil, fmt.Errorf("failed to render corrections file: %w", err)
	}
	for _, op := range ops {
		if op.Kind == plan.UpdateDate {
			outcome.Updated++
		}
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}
	if outcome.Created > 0 {
		if err := os.WriteFile(e.ImportPath(), imports, 0644); err != nil {
			return nil, fmt.Errorf("error writing import file: %w", err)
		}
	}
	if outcome.Updated > 0 {
		if err := os.WriteFile(e.CorrectionsPath(), corrections, 0644); err != nil {
			return nil, fmt.Errorf("error writing corrections file: %w", err)
		}
	}

	e.logger.Info("exported operations", "import", e.ImportPath(), "created", outcome.Created, "corrections", e.CorrectionsPath(), "updated", outcome.Updated)
	return outcome, nil
}

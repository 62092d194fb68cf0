// Package plan turns a reconciliation result into the ordered correction
// operations a replay backend applies to the destination.
package plan

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yurifrl/ynabsync/pkg/amount"
	"github.com/yurifrl/ynabsync/pkg/fingerprint"
	"github.com/yurifrl/ynabsync/pkg/reconcile"
)

type Kind string

const (
	UpdateDate Kind = "update_date"
	Create     Kind = "create"
)

// Operation is a single correction. UpdateDate uses TransactionID and
// NewDate; Create uses Date, Amount, Payee, Memo and ImportID.
type Operation struct {
	Kind          Kind   `yaml:"kind" json:"kind"`
	TransactionID string `yaml:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	NewDate       string `yaml:"new_date,omitempty" json:"new_date,omitempty"`
	PreviousDate  string `yaml:"previous_date,omitempty" json:"previous_date,omitempty"`
	Date          string `yaml:"date,omitempty" json:"date,omitempty"`
	Amount        int64  `yaml:"amount,omitempty" json:"amount,omitempty"`
	Payee         string `yaml:"payee,omitempty" json:"payee,omitempty"`
	Memo          string `yaml:"memo,omitempty" json:"memo,omitempty"`
	ImportID      string `yaml:"import_id,omitempty" json:"import_id,omitempty"`
}

// Plan is the ordered list of operations for one destination account. Date
// corrections always come before creations.
type Plan struct {
	BudgetID    string      `yaml:"budget_id" json:"budget_id"`
	AccountID   string      `yaml:"account_id" json:"account_id"`
	AccountName string      `yaml:"account_name" json:"account_name"`
	Operations  []Operation `yaml:"operations" json:"operations"`
}

// Outcome summarises what a backend did with a list of operations.
type Outcome struct {
	Updated int `json:"updated"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Applier replays operations against a destination. Implementations must
// apply them in the given order.
type Applier interface {
	Apply(ctx context.Context, ops []Operation) (*Outcome, error)
}

// Memo builds the memo of a created transaction: the fingerprint tag
// followed by the ledger title.
func Memo(shortID, title string) string {
	return strings.TrimSpace(fingerprint.Tag(shortID) + " " + title)
}

// Build translates a reconciliation result into a plan.
func Build(result *reconcile.Result) *Plan {
	changed := result.Changed()
	missing := result.Missing()

	ops := make([]Operation, 0, len(changed)+len(missing))
	for _, e := range changed {
		// same date, different amount: nothing a date correction can fix
		if e.Original.Date == e.Record.Date {
			continue
		}
		ops = append(ops, Operation{
			Kind:          UpdateDate,
			TransactionID: e.Original.ID,
			NewDate:       e.Record.Date,
			PreviousDate:  e.Original.Date,
		})
	}
	for _, e := range missing {
		ops = append(ops, Operation{
			Kind:     Create,
			Date:     e.Record.Date,
			Amount:   e.Record.CompareAmount,
			Payee:    e.Record.Title,
			Memo:     Memo(e.Record.ShortID, e.Record.Title),
			ImportID: e.Record.ID,
		})
	}
	return &Plan{Operations: ops}
}

// Updates returns the date correction operations.
func (p *Plan) Updates() []Operation {
	return p.ofKind(UpdateDate)
}

// Creates returns the creation operations.
func (p *Plan) Creates() []Operation {
	return p.ofKind(Create)
}

func (p *Plan) ofKind(k Kind) []Operation {
	out := make([]Operation, 0)
	for _, op := range p.Operations {
		if op.Kind == k {
			out = append(out, op)
		}
	}
	return out
}

// Empty reports whether there is nothing to apply.
func (p *Plan) Empty() bool {
	return len(p.Operations) == 0
}

// Validate checks every operation is complete and that no date correction
// follows a creation.
func (p *Plan) Validate() error {
	seenCreate := false
	for i, op := range p.Operations {
		switch op.Kind {
		case UpdateDate:
			if seenCreate {
				return fmt.Errorf("operation %d: date correction after a creation", i+1)
			}
			if op.TransactionID == "" || op.NewDate == "" {
				return fmt.Errorf("operation %d: update_date needs transaction_id and new_date", i+1)
			}
		case Create:
			seenCreate = true
			if op.Date == "" || op.ImportID == "" {
				return fmt.Errorf("operation %d: create needs date and import_id", i+1)
			}
		default:
			return fmt.Errorf("operation %d: unknown kind %q", i+1, op.Kind)
		}
	}
	return nil
}

// Save writes the plan as YAML.
func (p *Plan) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if p.AccountID == "" {
		return nil, fmt.Errorf("plan has no account_id")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Plan) Print(w io.Writer) {
	fmt.Fprintf(w, "YNAB budget: %s account: %s (%s)\n", p.BudgetID, p.AccountName, p.AccountID)
	for i, op := range p.Operations {
		switch op.Kind {
		case UpdateDate:
			fmt.Fprintf(w, "[%d] update_date id=%s %s -> %s\n", i+1, op.TransactionID, op.PreviousDate, op.NewDate)
		case Create:
			fmt.Fprintf(w, "[%d] create date=%s amount=%s memo=%q import_id=%s\n", i+1, op.Date, amount.Format(op.Amount), op.Memo, op.ImportID)
		}
	}
}

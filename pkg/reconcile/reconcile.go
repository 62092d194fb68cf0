// Package reconcile compares ledger records with the transactions already
// present in the destination account and classifies every in-scope record as
// unchanged, changed (booked under a different date) or missing. It is pure:
// no I/O, no shared state, safe to run concurrently on independent inputs.
package reconcile

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/yurifrl/ynabsync/pkg/amount"
	"github.com/yurifrl/ynabsync/pkg/fingerprint"
	"github.com/yurifrl/ynabsync/pkg/models"
)

// Status indicates the reconciliation result for a ledger record.
//
//   - Unchanged: same date and amount already present remotely.
//   - Changed:   found by fingerprint under a different date.
//   - Missing:   not present, needs to be created.
type Status int

const (
	Unchanged Status = iota
	Changed
	Missing
)

func (s Status) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	case Missing:
		return "missing"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Entry links a normalized record with its classification. Original is the
// destination transaction recovered by fingerprint and is set only for Changed.
type Entry struct {
	Record   models.NormalizedRecord
	Status   Status
	Original *models.DestinationTransaction
}

// Ambiguity records a fingerprint carried by more than one destination
// transaction. The first one in destination order is used.
type Ambiguity struct {
	RecordID       string   `yaml:"record_id"`
	Fingerprint    string   `yaml:"fingerprint"`
	TransactionIDs []string `yaml:"transaction_ids"`
}

// Result is the outcome of a reconciliation run. Entries only contains
// records accepted by the filter, in ledger order.
type Result struct {
	Normalized  []models.NormalizedRecord
	Entries     []Entry
	ambiguities []Ambiguity
}

type options struct {
	strict bool
}

// Option tunes a reconciliation run.
type Option func(*options)

// Strict makes Build fail with *models.AmbiguousFingerprintError instead of
// picking the first of several transactions sharing a fingerprint.
func Strict() Option {
	return func(o *options) { o.strict = true }
}

// Normalize derives the working copy of a ledger record.
func Normalize(r models.InputRecord) (models.NormalizedRecord, error) {
	date, err := r.Date.ISO()
	if err != nil {
		return models.NormalizedRecord{}, &models.ParseError{RecordID: r.ID, Field: "date", Value: r.Date.Date, Err: err}
	}

	compare, err := amount.Normalize(r.Amount)
	if err != nil {
		var pe *models.ParseError
		if errors.As(err, &pe) {
			pe.RecordID = r.ID
		}
		return models.NormalizedRecord{}, err
	}

	return models.NormalizedRecord{
		ID:            r.ID,
		Date:          date,
		Amount:        r.Amount,
		Title:         r.Title,
		ShortID:       fingerprint.Of(r.ID),
		CompareAmount: compare,
		Extra:         maps.Clone(r.Extra),
	}, nil
}

type matchKey struct {
	date   string
	amount int64
}

// Build normalizes every ledger record, keeps the ones accepted by filter and
// matches them against the remote transactions:
//
//  1. equality match: a remote transaction with the same date and amount
//     means the record is already synced;
//  2. fingerprint match: the first remote transaction (in remote order) whose
//     memo contains "#<shortId>" was created by an earlier run and has the
//     wrong date;
//  3. anything else is missing.
//
// Any record that fails to normalize aborts the run before matching starts.
func Build(local []models.InputRecord, remote []models.DestinationTransaction, filter Filter, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if filter == nil {
		filter = All()
	}

	normalized := make([]models.NormalizedRecord, 0, len(local))
	for _, r := range local {
		nr, err := Normalize(r)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, nr)
	}

	idx := make(map[matchKey]struct{}, len(remote))
	for _, rt := range remote {
		idx[matchKey{date: rt.Date, amount: rt.Amount}] = struct{}{}
	}

	result := &Result{Normalized: normalized}
	for _, nr := range normalized {
		if !filter(nr.Date) {
			continue
		}

		if _, ok := idx[matchKey{date: nr.Date, amount: nr.CompareAmount}]; ok {
			result.Entries = append(result.Entries, Entry{Record: nr, Status: Unchanged})
			continue
		}

		found, ids := findByFingerprint(nr.ShortID, remote)
		if len(ids) > 1 {
			if o.strict {
				return nil, &models.AmbiguousFingerprintError{Fingerprint: nr.ShortID, RecordID: nr.ID, TransactionIDs: ids}
			}
			result.ambiguities = append(result.ambiguities, Ambiguity{RecordID: nr.ID, Fingerprint: nr.ShortID, TransactionIDs: ids})
		}

		if found == nil {
			result.Entries = append(result.Entries, Entry{Record: nr, Status: Missing})
			continue
		}
		original := *found
		result.Entries = append(result.Entries, Entry{Record: nr, Status: Changed, Original: &original})
	}

	return result, nil
}

// findByFingerprint returns the first remote transaction tagged with short and
// the ids of every remote transaction carrying the tag.
func findByFingerprint(short string, remote []models.DestinationTransaction) (*models.DestinationTransaction, []string) {
	tag := fingerprint.Tag(short)
	var found *models.DestinationTransaction
	var ids []string
	for i := range remote {
		if !strings.Contains(remote[i].Memo, tag) {
			continue
		}
		if found == nil {
			found = &remote[i]
		}
		ids = append(ids, remote[i].ID)
	}
	return found, ids
}

func (r *Result) filter(status Status) []Entry {
	out := make([]Entry, 0)
	for _, e := range r.Entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

// Changed returns the records found by fingerprint under a different date.
func (r *Result) Changed() []Entry {
	return r.filter(Changed)
}

// Missing returns the records that still need to be created.
func (r *Result) Missing() []Entry {
	return r.filter(Missing)
}

// Unchanged returns the records already present with the same date and amount.
func (r *Result) Unchanged() []Entry {
	return r.filter(Unchanged)
}

// InSyncCount returns how many in-scope records are already present remotely.
func (r *Result) InSyncCount() int {
	return len(r.Unchanged())
}

// ChangedCount returns how many records need a date correction.
func (r *Result) ChangedCount() int {
	return len(r.Changed())
}

// MissingCount returns how many records still need to be created.
func (r *Result) MissingCount() int {
	return len(r.Missing())
}

// Ambiguities returns fingerprints that matched more than one remote transaction.
func (r *Result) Ambiguities() []Ambiguity {
	return r.ambiguities
}

package ynab

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/brunomvsouza/ynab.go/api"
	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/yurifrl/ynabsync/pkg/plan"
)

// API field limits.
const (
	maxImportID = 36
	maxMemo     = 200
	maxPayee    = 50
)

// Applier replays plan operations through the YNAB API. Date corrections are
// applied one at a time; consecutive creations are sent as one bulk request.
type Applier struct {
	client    *YNABClient
	budgetID  string
	accountID string
	logger    *log.Logger
}

func NewApplier(client *YNABClient, budgetID, accountID string, logger *log.Logger) *Applier {
	return &Applier{
		client:    client,
		budgetID:  budgetID,
		accountID: accountID,
		logger:    logger,
	}
}

func (a *Applier) Apply(ctx context.Context, ops []plan.Operation) (*plan.Outcome, error) {
	outcome := &plan.Outcome{}
	var pending []transaction.PayloadTransaction
	seen := make(map[string]bool)

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		switch op.Kind {
		case plan.UpdateDate:
			if err := a.flush(pending, outcome); err != nil {
				return outcome, err
			}
			pending = nil
			if err := a.updateDate(op); err != nil {
				return outcome, err
			}
			outcome.Updated++
		case plan.Create:
			id := ImportID(op.ImportID)
			if seen[id] {
				a.logger.Debug("skipping duplicate creation", "import_id", id)
				outcome.Skipped++
				continue
			}
			seen[id] = true
			payload, err := a.createPayload(op, id)
			if err != nil {
				return outcome, err
			}
			pending = append(pending, payload)
		default:
			return outcome, fmt.Errorf("unsupported operation kind %q", op.Kind)
		}
	}

	if err := ctx.Err(); err != nil {
		return outcome, err
	}
	if err := a.flush(pending, outcome); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// updateDate replaces the whole transaction with a copy carrying the new date.
func (a *Applier) updateDate(op plan.Operation) error {
	tx, err := a.client.transactions.GetTransaction(a.budgetID, op.TransactionID)
	if err != nil {
		return errors.Wrapf(err, "failed to fetch transaction %s", op.TransactionID)
	}

	date, err := api.DateFromString(op.NewDate)
	if err != nil {
		return fmt.Errorf("invalid date %q for transaction %s: %w", op.NewDate, op.TransactionID, err)
	}

	payload := transaction.PayloadTransaction{
		AccountID:  tx.AccountID,
		Date:       date,
		Amount:     tx.Amount,
		Cleared:    tx.Cleared,
		Approved:   tx.Approved,
		PayeeID:    tx.PayeeID,
		CategoryID: tx.CategoryID,
		Memo:       tx.Memo,
		FlagColor:  tx.FlagColor,
		ImportID:   tx.ImportID,
	}
	if _, err := a.client.transactions.UpdateTransaction(a.budgetID, op.TransactionID, payload); err != nil {
		return errors.Wrapf(err, "failed to update date of transaction %s", op.TransactionID)
	}
	a.logger.Debug("updated transaction date", "id", op.TransactionID, "from", tx.Date.Format("2006-01-02"), "to", op.NewDate)
	return nil
}

func (a *Applier) createPayload(op plan.Operation, importID string) (transaction.PayloadTransaction, error) {
	date, err := api.DateFromString(op.Date)
	if err != nil {
		return transaction.PayloadTransaction{}, fmt.Errorf("invalid date %q for import %s: %w", op.Date, op.ImportID, err)
	}

	memo := truncate(op.Memo, maxMemo)
	p := transaction.PayloadTransaction{
		AccountID: a.accountID,
		Date:      date,
		Amount:    op.Amount,
		Cleared:   transaction.ClearingStatusCleared,
		Approved:  true,
		Memo:      &memo,
		ImportID:  &importID,
	}
	if op.Payee != "" {
		payee := truncate(op.Payee, maxPayee)
		p.PayeeName = &payee
	}
	return p, nil
}

func (a *Applier) flush(batch []transaction.PayloadTransaction, outcome *plan.Outcome) error {
	if len(batch) == 0 {
		return nil
	}
	summary, err := a.client.transactions.CreateTransactions(a.budgetID, batch)
	if err != nil {
		return errors.Wrap(err, "failed to create transactions")
	}

	created := len(batch)
	if summary != nil {
		created = len(batch) - len(summary.DuplicateImportIDs)
		outcome.Skipped += len(summary.DuplicateImportIDs)
		if len(summary.DuplicateImportIDs) > 0 {
			a.logger.Info("import ids already present", "count", len(summary.DuplicateImportIDs), "account_id", a.accountID)
		}
	}
	outcome.Created += created
	a.logger.Info("created transactions", "count", created, "account_id", a.accountID)
	return nil
}

// ImportID returns the import id sent to YNAB for a ledger record id. Ids
// longer than the API allows are replaced by a stable hash.
func ImportID(id string) string {
	if len(id) <= maxImportID {
		return id
	}
	return fmt.Sprintf("ynabsync:%x", sha256.Sum256([]byte(id)))[:maxImportID]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

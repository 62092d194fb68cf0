package executors

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/k0kubun/pp/v3"

	"github.com/yurifrl/ynabsync/pkg/models"
	"github.com/yurifrl/ynabsync/pkg/plan"
	"github.com/yurifrl/ynabsync/pkg/reconcile"
)

// Run is everything produced while planning one ledger.
type Run struct {
	ID      string
	Account models.Account
	Remote  []models.DestinationTransaction
	Result  *reconcile.Result
	Plan    *plan.Plan
}

// Plan resolves the destination account, fetches its transactions,
// reconciles the ledger records against them and builds the operations.
// Nothing is written to the destination.
func (e *Executor) Plan(records []models.InputRecord) (*Run, error) {
	run := &Run{ID: uuid.NewString()}
	logger := e.logger.With("run_id", run.ID)

	if err := e.config.RequireDestination(); err != nil {
		return nil, err
	}
	budgetID := e.config.YNAB.BudgetID

	account, err := e.dest.ResolveAccount(budgetID, e.config.YNAB.Account)
	if err != nil {
		return nil, err
	}
	run.Account = *account
	logger.Debug("resolved account", "name", account.Name, "account_id", account.ID)

	remote, err := e.dest.Transactions(budgetID, account.ID)
	if err != nil {
		return nil, err
	}
	run.Remote = remote

	var opts []reconcile.Option
	if e.config.Strict {
		opts = append(opts, reconcile.Strict())
	}
	result, err := reconcile.Build(records, remote, e.config.Filter(e.now()), opts...)
	if err != nil {
		return nil, err
	}
	run.Result = result

	for _, a := range result.Ambiguities() {
		logger.Warn("fingerprint carried by several transactions, using the first", "record", a.RecordID, "fingerprint", a.Fingerprint, "transactions", a.TransactionIDs)
	}
	logger.Info("reconciled ledger", "records", len(records), "in_scope", len(result.Entries), "in_sync", result.InSyncCount(), "changed", result.ChangedCount(), "missing", result.MissingCount())

	run.Plan = plan.Build(result)
	run.Plan.BudgetID = budgetID
	run.Plan.AccountID = account.ID
	run.Plan.AccountName = account.Name

	if e.config.DebugFile != "" {
		if err := e.writeDump(run); err != nil {
			return nil, err
		}
		logger.Debug("wrote diagnostic dump", "file", e.config.DebugFile)
	}

	if e.config.Verbose {
		printer := pp.New()
		printer.SetColoringEnabled(false)
		printer.Fprintln(e.debug, run.Plan.Operations)
	}

	return run, nil
}

func (e *Executor) writeDump(run *Run) error {
	f, err := os.Create(e.config.DebugFile)
	if err != nil {
		return fmt.Errorf("error creating debug file: %w", err)
	}
	defer f.Close()

	if err := reconcile.Dump(f, run.ID, run.Result, run.Remote); err != nil {
		return err
	}
	return f.Close()
}

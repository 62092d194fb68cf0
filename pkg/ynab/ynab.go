// Package ynab fetches destination transactions from the YNAB API and
// replays correction operations against it.
package ynab

import (
	"sort"

	"github.com/brunomvsouza/ynab.go"
	"github.com/brunomvsouza/ynab.go/api"
	"github.com/brunomvsouza/ynab.go/api/account"
	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/pkg/errors"

	"github.com/yurifrl/ynabsync/pkg/models"
)

type accountService interface {
	GetAccounts(budgetID string, f *api.Filter) (*account.SearchResultSnapshot, error)
}

type transactionService interface {
	GetTransactionsByAccount(budgetID, accountID string, f *transaction.Filter) ([]*transaction.Transaction, error)
	GetTransaction(budgetID, transactionID string) (*transaction.Transaction, error)
	UpdateTransaction(budgetID, transactionID string, p transaction.PayloadTransaction) (*transaction.Transaction, error)
	CreateTransactions(budgetID string, p []transaction.PayloadTransaction) (*transaction.OperationSummary, error)
}

// YNABClient wraps the original YNAB client and maps its entities onto the
// destination model.
type YNABClient struct {
	accounts     accountService
	transactions transactionService
}

func New(token string) *YNABClient {
	client := ynab.NewClient(token)
	return &YNABClient{
		accounts:     client.Account(),
		transactions: client.Transaction(),
	}
}

// Accounts lists the open, non-deleted accounts of a budget.
func (c *YNABClient) Accounts(budgetID string) ([]models.Account, error) {
	snapshot, err := c.accounts.GetAccounts(budgetID, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch accounts of budget %s", budgetID)
	}

	var out []models.Account
	if snapshot == nil {
		return out, nil
	}
	for _, a := range snapshot.Accounts {
		if a == nil || a.Deleted {
			continue
		}
		out = append(out, models.Account{ID: a.ID, Name: a.Name, Closed: a.Closed})
	}
	return out, nil
}

// ResolveAccount finds an open account by name. The error lists every open
// account name so a typo is easy to spot.
func (c *YNABClient) ResolveAccount(budgetID, name string) (*models.Account, error) {
	accounts, err := c.Accounts(budgetID)
	if err != nil {
		return nil, err
	}

	available := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if a.Closed {
			continue
		}
		if a.Name == name {
			found := a
			return &found, nil
		}
		available = append(available, a.Name)
	}
	sort.Strings(available)
	return nil, &models.AccountNotFoundError{Name: name, Available: available}
}

// Transactions returns the non-deleted transactions of an account.
func (c *YNABClient) Transactions(budgetID, accountID string) ([]models.DestinationTransaction, error) {
	original, err := c.transactions.GetTransactionsByAccount(budgetID, accountID, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch transactions of account %s", accountID)
	}

	out := make([]models.DestinationTransaction, 0, len(original))
	for _, tx := range original {
		if tx == nil || tx.Deleted {
			continue
		}
		out = append(out, toDestination(tx))
	}
	return out, nil
}

func toDestination(tx *transaction.Transaction) models.DestinationTransaction {
	return models.DestinationTransaction{
		ID:        tx.ID,
		Date:      tx.Date.Format(models.DateLayout),
		Amount:    tx.Amount,
		Memo:      deref(tx.Memo),
		Payee:     deref(tx.PayeeName),
		AccountID: tx.AccountID,
		ImportID:  deref(tx.ImportID),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

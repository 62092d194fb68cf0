package models

// DestinationTransaction is a transaction already present in the destination
// account. Amount is in milliunits, negative for outflows.
type DestinationTransaction struct {
	ID        string `json:"id" yaml:"id"`
	Date      string `json:"date" yaml:"date"`
	Amount    int64  `json:"amount" yaml:"amount"`
	Memo      string `json:"memo,omitempty" yaml:"memo,omitempty"`
	Payee     string `json:"payee,omitempty" yaml:"payee,omitempty"`
	AccountID string `json:"account_id" yaml:"account_id"`
	ImportID  string `json:"import_id,omitempty" yaml:"import_id,omitempty"`
}

// Account is a destination account a ledger is synchronised into.
type Account struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Closed bool   `json:"closed" yaml:"closed"`
}

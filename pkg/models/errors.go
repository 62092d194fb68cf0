package models

import (
	"fmt"
	"strings"
)

// ParseError reports a ledger record that could not be normalized. A single
// corrupt record aborts the whole run.
type ParseError struct {
	RecordID string
	Field    string
	Value    string
	Err      error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	if e.RecordID != "" {
		msg = fmt.Sprintf("record %s: %s", e.RecordID, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// AccountNotFoundError is returned when the configured destination account
// name matches none of the budget's accounts.
type AccountNotFoundError struct {
	Name      string
	Available []string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %q not found, available accounts: %s", e.Name, strings.Join(e.Available, ", "))
}

// AmbiguousFingerprintError is returned in strict mode when more than one
// destination transaction carries the same fingerprint tag.
type AmbiguousFingerprintError struct {
	Fingerprint    string
	RecordID       string
	TransactionIDs []string
}

func (e *AmbiguousFingerprintError) Error() string {
	return fmt.Sprintf("record %s: fingerprint #%s is carried by %d destination transactions (%s)",
		e.RecordID, e.Fingerprint, len(e.TransactionIDs), strings.Join(e.TransactionIDs, ", "))
}

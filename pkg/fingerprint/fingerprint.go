// Package fingerprint derives the short ids that tag created transactions so
// they can be recognised again after the destination rewrites their memo.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
)

// Length is the number of hex characters kept from the hash.
const Length = 8

// Of returns the fingerprint of a ledger record id.
func Of(id string) string {
	hash := sha256.Sum256([]byte(id))
	return fmt.Sprintf("%x", hash)[:Length]
}

// Tag returns the memo tag for a fingerprint.
func Tag(short string) string {
	return "#" + short
}

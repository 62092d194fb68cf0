// Package amount converts ledger amount strings into destination milliunits.
package amount

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/ynabsync/pkg/models"
)

// separators are the thousands/decimal markers used by the ledger export.
var separators = strings.NewReplacer(".", "", ",", "")

// Normalize turns a decimal-comma/thousands-dot ledger amount into a signed
// milliunit amount. The ledger books withdrawals with a leading minus, the
// destination books them as positive charges, so the sign is flipped:
// "12.34" -> -12340, "-12.34" -> 12340.
func Normalize(s string) (int64, error) {
	raw := strings.TrimSpace(s)
	negative := strings.HasPrefix(raw, "-")
	digits := separators.Replace(strings.TrimPrefix(raw, "-"))

	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, &models.ParseError{Field: "amount", Value: s}
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, &models.ParseError{Field: "amount", Value: s, Err: err}
	}

	if n > math.MaxInt64/10 {
		return 0, &models.ParseError{Field: "amount", Value: s, Err: strconv.ErrRange}
	}
	n *= 10
	if negative {
		return n, nil
	}
	return -n, nil
}

// Format renders milliunits as a two decimal string, e.g. -12340 -> "-12.34".
func Format(milliunits int64) string {
	return decimal.New(milliunits, -3).StringFixed(2)
}

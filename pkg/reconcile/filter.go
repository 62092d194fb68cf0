package reconcile

import (
	"strings"
)

// Filter decides whether a normalized record (by its YYYY-MM-DD date) is in
// scope for a reconciliation run.
type Filter func(date string) bool

// All accepts every date.
func All() Filter {
	return func(string) bool { return true }
}

// YearPrefixes accepts dates starting with one of the given prefixes, e.g.
// YearPrefixes("2018", "2017") or YearPrefixes("2018-03").
func YearPrefixes(prefixes ...string) Filter {
	return func(date string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(date, p) {
				return true
			}
		}
		return false
	}
}

// DateRange accepts dates between from and to, both inclusive. An empty bound
// is open. ISO dates compare correctly as strings.
func DateRange(from, to string) Filter {
	return func(date string) bool {
		if from != "" && date < from {
			return false
		}
		if to != "" && date > to {
			return false
		}
		return true
	}
}

// And accepts dates accepted by every filter.
func And(filters ...Filter) Filter {
	return func(date string) bool {
		for _, f := range filters {
			if f != nil && !f(date) {
				return false
			}
		}
		return true
	}
}

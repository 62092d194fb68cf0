package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date used everywhere after normalization.
const DateLayout = "2006-01-02"

// DateField is the embedded date object of a ledger record. Exporters write it
// as {"date": "2018-03-01 00:00:00.000000", "timezone_type": 3, "timezone": "Europe/Berlin"}.
type DateField struct {
	Date         string `json:"date" yaml:"date"`
	TimezoneType int    `json:"timezone_type,omitempty" yaml:"timezone_type,omitempty"`
	Timezone     string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
}

// ISO returns the calendar date part as YYYY-MM-DD.
func (d DateField) ISO() (string, error) {
	raw := strings.TrimSpace(d.Date)
	if len(raw) < len(DateLayout) {
		return "", fmt.Errorf("date %q is too short", d.Date)
	}
	day, rest := raw[:len(DateLayout)], raw[len(DateLayout):]
	if rest != "" && rest[0] != ' ' && rest[0] != 'T' {
		return "", fmt.Errorf("date %q has unexpected suffix", d.Date)
	}
	if _, err := time.Parse(DateLayout, day); err != nil {
		return "", err
	}
	return day, nil
}

// InputRecord is one transaction of the exported ledger, as received.
type InputRecord struct {
	ID     string         `json:"id" yaml:"id"`
	Date   DateField      `json:"date" yaml:"date"`
	Amount string         `json:"amount" yaml:"amount"`
	Title  string         `json:"title" yaml:"title"`
	Extra  map[string]any `json:"-" yaml:"extra,omitempty"`
}

// NormalizedRecord is the engine's working copy of an InputRecord. ShortID
// and CompareAmount are derived once during normalization.
type NormalizedRecord struct {
	ID            string         `json:"id" yaml:"id"`
	Date          string         `json:"date" yaml:"date"`
	Amount        string         `json:"amount" yaml:"amount"`
	Title         string         `json:"title,omitempty" yaml:"title,omitempty"`
	ShortID       string         `json:"short_id" yaml:"short_id"`
	CompareAmount int64          `json:"compare_amount" yaml:"compare_amount"`
	Extra         map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

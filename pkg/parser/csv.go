package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// parseCSV reads a ';' separated ledger with a header line, e.g.
//
//	id;date;amount;title
//	a1;2018-03-01;50.00;Salary
func (p *Parser) parseCSV(data []byte) ([]map[string]any, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = ';'
	r.FieldsPerRecord = -1 // validated against the header below

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv is empty")
	}
	return p.rowsFromTable(records)
}

// rowsFromTable turns a header row plus data rows into keyed rows. Blank
// lines are skipped.
func (p *Parser) rowsFromTable(table [][]string) ([]map[string]any, error) {
	header := make([]string, len(table[0]))
	for i, h := range table[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for _, required := range []string{"id", "date", "amount"} {
		if !contains(header, required) {
			return nil, fmt.Errorf("required column %q not found in header", required)
		}
	}

	rows := make([]map[string]any, 0, len(table)-1)
	for i, rec := range table[1:] {
		if blank(rec) {
			continue
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("line %d has %d fields, header has %d", i+2, len(rec), len(header))
		}
		row := make(map[string]any, len(header))
		for j, value := range rec {
			row[header[j]] = strings.TrimSpace(value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

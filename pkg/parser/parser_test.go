package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/ynabsync/pkg/models"
)

func TestProcessBytesJSON(t *testing.T) {
	content := []byte(`[
  {"id": "a1", "date": {"date": "2018-03-01 00:00:00.000000", "timezone_type": 3, "timezone": "Europe/Berlin"}, "amount": "50.00", "title": "Salary", "iban": "DE00"},
  {"id": 42, "date": "2019-01-01", "amount": "-10.00"}
]`)

	parser := New(log.Default())
	records, err := parser.ProcessBytes(content, "ledger.json")
	if err != nil {
		t.Fatalf("ProcessBytes failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.ID != "a1" || first.Amount != "50.00" || first.Title != "Salary" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.Date.Date != "2018-03-01 00:00:00.000000" || first.Date.Timezone != "Europe/Berlin" || first.Date.TimezoneType != 3 {
		t.Errorf("unexpected date field: %+v", first.Date)
	}
	if first.Extra["iban"] != "DE00" {
		t.Errorf("expected passthrough field iban, got %+v", first.Extra)
	}

	second := records[1]
	if second.ID != "42" || second.Date.Date != "2019-01-01" || second.Amount != "-10.00" {
		t.Errorf("unexpected second record: %+v", second)
	}
}

func TestProcessBytesYAML(t *testing.T) {
	content := []byte(`- id: a1
  date:
    date: 2018-03-01
  amount: "50.00"
  title: Salary
`)

	records, err := New(log.Default()).ProcessBytes(content, "ledger.yml")
	if err != nil {
		t.Fatalf("ProcessBytes failed: %v", err)
	}
	if len(records) != 1 || records[0].Date.Date != "2018-03-01" || records[0].Amount != "50.00" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestProcessBytesCSV(t *testing.T) {
	content := []byte("ID;Date;Amount;Title;Category\n" +
		"a1;2018-03-01;50.00;Salary;income\n" +
		"\n" +
		"a2;2018-03-02;-1.234,00;Rent;\n")

	records, err := New(log.Default()).ProcessBytes(content, "ledger.csv")
	if err != nil {
		t.Fatalf("ProcessBytes failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	assertRecord(t, records[0], "a1", "2018-03-01", "50.00", "Salary")
	assertRecord(t, records[1], "a2", "2018-03-02", "-1.234,00", "Rent")
	if records[0].Extra["category"] != "income" {
		t.Errorf("expected passthrough category, got %+v", records[0].Extra)
	}
}

func TestProcessBytesErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		field    string
	}{
		{name: "unknown type", filename: "ledger.pdf", content: "x"},
		{name: "bad json", filename: "ledger.json", content: "{"},
		{name: "numeric amount", filename: "ledger.json", content: `[{"id": "a1", "date": "2018-01-01", "amount": 50.0}]`, field: "amount"},
		{name: "missing id", filename: "ledger.json", content: `[{"date": "2018-01-01", "amount": "1.00"}]`, field: "id"},
		{name: "missing date", filename: "ledger.json", content: `[{"id": "a1", "amount": "1.00"}]`, field: "date"},
		{name: "date object without date", filename: "ledger.json", content: `[{"id": "a1", "date": {"timezone": "UTC"}, "amount": "1.00"}]`, field: "date"},
		{name: "missing column", filename: "ledger.csv", content: "id;title\na1;x\n"},
		{name: "too many fields", filename: "ledger.csv", content: "id;date;amount\na1;2018-01-01;1.00;extra\n"},
	}

	parser := New(log.Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ProcessBytes([]byte(tt.content), tt.filename)
			if err == nil {
				t.Fatalf("expected error but got none")
			}
			if tt.field == "" {
				return
			}
			var parseErr *models.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if parseErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, parseErr.Field)
			}
		})
	}
}

func TestLedgerRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := os.WriteFile(path, []byte(`[{"id": "a1", "date": {"date": "2018-03-01"}, "amount": "50.00"}]`), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	ledger := &models.Ledger{FilePath: path}
	records, err := ledger.Records(New(log.Default()))
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "a1" {
		t.Errorf("unexpected records: %+v", records)
	}

	missing := &models.Ledger{FilePath: filepath.Join(t.TempDir(), "nope.json")}
	if _, err := missing.Records(New(log.Default())); err == nil {
		t.Errorf("expected error for missing ledger file")
	}
}

func assertRecord(t *testing.T, rec models.InputRecord, id, date, amount, title string) {
	t.Helper()
	if rec.ID != id || rec.Date.Date != date || rec.Amount != amount || rec.Title != title {
		t.Errorf("Record mismatch:\nExpected: id=%s, date=%s, amount=%s, title=%s\nGot: id=%s, date=%s, amount=%s, title=%s",
			id, date, amount, title,
			rec.ID, rec.Date.Date, rec.Amount, rec.Title)
	}
}

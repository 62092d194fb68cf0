// Package parser reads exported ledger files into records.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/ynabsync/pkg/models"
)

type FileType string

const (
	LedgerJSON FileType = "ledger_json"
	LedgerYAML FileType = "ledger_yaml"
	LedgerCSV  FileType = "ledger_csv"
	LedgerXLS  FileType = "ledger_xls"
)

type Parser struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

func (p *Parser) ProcessBytes(data []byte, filename string) ([]models.InputRecord, error) {
	fileType := detectType(filename)
	p.logger.Debug("detected file type", "type", fileType, "filename", filename)

	var (
		rows []map[string]any
		err  error
	)
	switch fileType {
	case LedgerJSON:
		rows, err = p.parseJSON(data)
	case LedgerYAML:
		rows, err = p.parseYAML(data)
	case LedgerCSV:
		rows, err = p.parseCSV(data)
	case LedgerXLS:
		rows, err = p.parseXLS(data)
	default:
		p.logger.Debug("unknown file type", "filename", filename)
		return nil, fmt.Errorf("unknown file type")
	}
	if err != nil {
		return nil, err
	}

	records := make([]models.InputRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := recordFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	p.logger.Debug("parsed ledger", "filename", filename, "records", len(records))
	return records, nil
}

func detectType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return LedgerJSON
	case ".yaml", ".yml":
		return LedgerYAML
	case ".csv", ".txt":
		return LedgerCSV
	case ".xls":
		return LedgerXLS
	}
	return ""
}

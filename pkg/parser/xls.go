package parser

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// maxXLSRows bounds how many rows are read from the first sheet.
const maxXLSRows = 100000

// parseXLS reads the first sheet of a workbook whose first row is the header
// id,date,amount,title,... Cells must be text so amounts keep their format.
func (p *Parser) parseXLS(data []byte) ([]map[string]any, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("error creating workbook: %w", err)
	}

	rows := workbook.ReadAllCells(maxXLSRows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in sheet")
	}
	return p.rowsFromTable(rows)
}

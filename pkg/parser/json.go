package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

func (p *Parser) parseJSON(data []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode json ledger: %w", err)
	}
	return rows, nil
}

// parseYAML expects a sequence of mappings. Amounts must be quoted so they
// stay strings.
func (p *Parser) parseYAML(data []byte) ([]map[string]any, error) {
	var rows []map[string]any
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode yaml ledger: %w", err)
	}
	return rows, nil
}

package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Parser is the contract for turning a ledger file into records.
type Parser interface {
	ProcessBytes(data []byte, filename string) ([]InputRecord, error)
}

// Ledger points at an exported ledger file.
type Ledger struct {
	FilePath string `yaml:"file" mapstructure:"file"`
}

// File returns the path to the ledger file, expanding ~.
func (l *Ledger) File() (string, error) {
	if strings.HasPrefix(l.FilePath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, l.FilePath[2:]), nil
	}
	return l.FilePath, nil
}

// Records reads the ledger file and uses the provided parser to return its records.
func (l *Ledger) Records(p Parser) ([]InputRecord, error) {
	filePath, err := l.File()
	if err != nil {
		return nil, err
	}

	fileBytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger file %s: %w", filePath, err)
	}

	records, err := p.ProcessBytes(fileBytes, filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to process ledger file %s: %w", filePath, err)
	}

	return records, nil
}

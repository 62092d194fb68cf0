package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/ynabsync/pkg/config"
	"github.com/yurifrl/ynabsync/pkg/executors"
	"github.com/yurifrl/ynabsync/pkg/models"
	"github.com/yurifrl/ynabsync/pkg/parser"
)

var ledgerExts = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".csv":  true,
	".txt":  true,
	".xls":  true,
}

// Processor plans every ledger in a directory against the configured account
// and writes one plan file per ledger.
type Processor struct {
	config *config.Config
	logger *log.Logger
	exec   *executors.Executor
	parser *parser.Parser
}

func NewProcessor(config *config.Config, logger *log.Logger, dest executors.Destination) *Processor {
	return &Processor{
		config: config,
		logger: logger,
		exec:   executors.New(logger, config, dest),
		parser: parser.New(logger),
	}
}

// ProcessDirectory returns the plan files written. A ledger that fails does
// not stop the others; all failures are joined into the returned error.
func (p *Processor) ProcessDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}

	var (
		written []string
		errs    []error
	)
	for _, entry := range entries {
		out, err := p.processEntry(dir, entry)
		if err != nil {
			p.logger.Error("failed to process entry", "file", entry.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name(), err))
			continue
		}
		if out != "" {
			written = append(written, out)
		}
	}

	return written, errors.Join(errs...)
}

func (p *Processor) processEntry(dir string, entry os.DirEntry) (string, error) {
	if entry.IsDir() {
		return "", nil
	}

	name := entry.Name()
	if !ledgerExts[strings.ToLower(filepath.Ext(name))] || strings.HasSuffix(name, "-plan.yaml") {
		return "", nil
	}

	inputPath := filepath.Join(dir, name)
	outFile := p.determineOutputPath(inputPath, name)

	p.logger.Info("processing ledger", "path", inputPath)

	ledger := &models.Ledger{FilePath: inputPath}
	records, err := ledger.Records(p.parser)
	if err != nil {
		return "", err
	}

	run, err := p.exec.Plan(records)
	if err != nil {
		return "", fmt.Errorf("error planning ledger: %w", err)
	}
	if err := run.Plan.Save(outFile); err != nil {
		return "", err
	}

	p.logger.Info("planned ledger", "input", inputPath, "output", outFile, "operations", len(run.Plan.Operations))
	return outFile, nil
}

func (p *Processor) determineOutputPath(inputPath, fileName string) string {
	ext := filepath.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)
	if p.config.Output != "" {
		return filepath.Join(p.config.Output, baseName+"-plan.yaml")
	}
	return strings.TrimSuffix(inputPath, ext) + "-plan.yaml"
}

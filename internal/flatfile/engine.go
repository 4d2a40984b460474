// Package flatfile implements the flat-file side of a transfer: parsing
// delimited text without a fixed schema, inferring column types, projecting a
// subset of columns and writing the result back out.
//
// Every operation takes an immutable Config and re-parses the content it is
// given; nothing is cached between calls and no state is shared, so calls may
// run concurrently. Two calls writing the same output filename race and the
// last rename wins.
package flatfile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/flatbridge/internal/logging"
	"github.com/JonMunkholm/flatbridge/internal/schema"
)

// Engine runs flat-file operations and writes exports under OutputDir.
type Engine struct {
	outputDir string
}

// NewEngine returns an engine writing exports to outputDir.
func NewEngine(outputDir string) *Engine {
	if outputDir == "" {
		outputDir = "."
	}
	return &Engine{outputDir: outputDir}
}

// OutputDir returns the directory exports are written to.
func (e *Engine) OutputDir() string { return e.outputDir }

// Tables lists the implicit tables of a flat file: the file itself, when it
// has a name.
func (e *Engine) Tables(cfg Config) []string {
	if cfg.Filename == "" {
		return []string{}
	}
	return []string{cfg.Filename}
}

// Columns parses the content and describes each header column, inferring
// its type from the first data row.
func (e *Engine) Columns(cfg Config) ([]schema.ColumnDescriptor, error) {
	header, rows, err := e.Read(cfg)
	if err != nil {
		return nil, err
	}
	return Describe(header, rows), nil
}

// Preview returns up to PreviewLimit rows restricted to the selected columns.
func (e *Engine) Preview(cfg Config, selected []string) (schema.RowSet, error) {
	header, rows, err := e.Read(cfg)
	if err != nil {
		return nil, err
	}
	return Project(rows, header, selected, PreviewLimit), nil
}

// ImportExport parses the content, keeps the selected columns of every row
// and writes them to OutputDir with the same delimiter. It never returns an
// error: every failure, including a panic, is reported in the result.
func (e *Engine) ImportExport(ctx context.Context, cfg Config, selected []string) (result schema.IngestionResult) {
	logger := logging.WithFields(ctx,
		"filename", cfg.Filename,
		"delimiter", DelimiterName(cfg.Delim()),
		"selected", len(selected),
	)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("flat-file export panicked", "panic", r)
			result = schema.Failed(fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	n, path, err := e.export(cfg, selected)
	if err != nil {
		logger.Warn("flat-file export failed", "error", err)
		return schema.Failed(err)
	}

	logger.Info("flat-file export completed",
		"records", n,
		"path", path,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return schema.Succeeded(n, fmt.Sprintf("Successfully exported %d records to %s", n, path))
}

func (e *Engine) export(cfg Config, selected []string) (int, string, error) {
	header, rows, err := e.Read(cfg)
	if err != nil {
		return 0, "", err
	}
	if len(rows) == 0 {
		return 0, "", newError(EmptyInput, "file has a header but no data rows", nil)
	}

	cols := SelectColumns(header, selected)
	if len(cols) == 0 {
		return 0, "", newError(NoColumns, "none of the selected columns exist in the file", nil)
	}

	projected := Project(rows, header, cols, 0)
	path, err := Persist(e.outputDir, cfg.Filename, cfg.Delim(), cols, projected)
	if err != nil {
		return 0, "", err
	}
	return len(rows), path, nil
}

// Read normalizes and parses the content of cfg, returning the header and
// every data row.
func (e *Engine) Read(cfg Config) ([]string, schema.RowSet, error) {
	text, err := cfg.Content.Normalize()
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil, newError(EmptyInput, "file content is empty", nil)
	}
	return Parse(text, cfg.Delim())
}

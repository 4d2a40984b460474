package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/flatbridge/internal/flatfile"
	"github.com/JonMunkholm/flatbridge/internal/schema"
)

// ErrNoConnector is reported when a transfer needs a database connector and
// none is configured.
var ErrNoConnector = errors.New("source connector not configured")

// Orchestrator routes a transfer to the side named by its direction.
type Orchestrator struct {
	Files  *flatfile.Engine
	Source Connector
}

// NewOrchestrator returns an orchestrator over the two sides of a transfer.
func NewOrchestrator(files *flatfile.Engine, source Connector) *Orchestrator {
	return &Orchestrator{Files: files, Source: source}
}

// Transfer runs req and returns the side's result unmodified.
//
//	file_to_source: the flat-file engine imports and exports the file
//	source_to_file: the connector exports the table to a file
func (o *Orchestrator) Transfer(ctx context.Context, req TransferRequest) schema.IngestionResult {
	switch req.Direction {
	case schema.FileToSource:
		if o.Files == nil {
			return schema.Failed(errors.New("flat-file engine not configured"))
		}
		return o.Files.ImportExport(ctx, req.File, req.Selected)
	case schema.SourceToFile:
		if o.Source == nil {
			return schema.Failed(ErrNoConnector)
		}
		return o.Source.ImportExport(ctx, req.Source, req.File, req.Table, req.Selected)
	default:
		return schema.Failed(fmt.Errorf("unknown direction %q", req.Direction))
	}
}

package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/flatbridge/internal/auth"
	"github.com/JonMunkholm/flatbridge/internal/flatfile"
	"github.com/JonMunkholm/flatbridge/internal/schema"
)

// Options configures a Service.
type Options struct {
	MaxConcurrent int
	MaxWait       time.Duration
}

// Service is the entry point for handlers and the CLI: browsing both sides
// of a transfer, running transfers with job history, saved configurations
// and user accounts.
type Service struct {
	store   Store
	orch    *Orchestrator
	limiter *TransferLimiter
	tokens  *auth.Issuer
}

// NewService creates a Service. tokens may be nil when no caller needs
// register, login or Authenticate.
func NewService(store Store, orch *Orchestrator, tokens *auth.Issuer, opts Options) *Service {
	return &Service{
		store:   store,
		orch:    orch,
		limiter: NewTransferLimiter(opts.MaxConcurrent, opts.MaxWait),
		tokens:  tokens,
	}
}

// FileTables lists the implicit tables of a flat file.
func (s *Service) FileTables(cfg flatfile.Config) []string {
	return s.orch.Files.Tables(cfg)
}

// FileColumns describes the columns of a flat file.
func (s *Service) FileColumns(cfg flatfile.Config) ([]schema.ColumnDescriptor, error) {
	return s.orch.Files.Columns(cfg)
}

// FilePreview returns the first rows of a flat file, projected.
func (s *Service) FilePreview(cfg flatfile.Config, selected []string) (schema.RowSet, error) {
	return s.orch.Files.Preview(cfg, selected)
}

// SourceTables lists the tables of the source database.
func (s *Service) SourceTables(ctx context.Context, src schema.SourceConfig) ([]string, error) {
	if s.orch.Source == nil {
		return nil, ErrNoConnector
	}
	return s.orch.Source.Tables(ctx, src)
}

// SourceColumns describes a source table.
func (s *Service) SourceColumns(ctx context.Context, src schema.SourceConfig, table string) ([]schema.ColumnDescriptor, error) {
	if s.orch.Source == nil {
		return nil, ErrNoConnector
	}
	return s.orch.Source.Columns(ctx, src, table)
}

// SourcePreview returns the first rows of a source table, projected.
func (s *Service) SourcePreview(ctx context.Context, src schema.SourceConfig, table string, selected []string) (schema.RowSet, error) {
	if s.orch.Source == nil {
		return nil, ErrNoConnector
	}
	return s.orch.Source.Preview(ctx, src, table, selected)
}

// TransferStatus reports limiter usage.
func (s *Service) TransferStatus() TransferLimiterStatus {
	return s.limiter.Status()
}

// WaitForTransfers blocks until running transfers finish or ctx is done.
// Used during shutdown.
func (s *Service) WaitForTransfers(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

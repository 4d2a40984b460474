package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/flatbridge/internal/flatfile"
	"github.com/JonMunkholm/flatbridge/internal/schema"
)

// Connector is the database side of a transfer. The warehouse package
// provides the DuckDB implementation.
type Connector interface {
	Tables(ctx context.Context, src schema.SourceConfig) ([]string, error)
	Columns(ctx context.Context, src schema.SourceConfig, table string) ([]schema.ColumnDescriptor, error)
	Preview(ctx context.Context, src schema.SourceConfig, table string, selected []string) (schema.RowSet, error)
	ImportExport(ctx context.Context, src schema.SourceConfig, file flatfile.Config, table string, selected []string) schema.IngestionResult
}

// TransferRequest describes one terminal transfer.
type TransferRequest struct {
	Direction schema.Direction
	Source    schema.SourceConfig
	File      flatfile.Config
	Table     string
	Selected  []string
}

// JobStatus is the lifecycle state of an ingest job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is one recorded transfer.
type Job struct {
	ID               string           `json:"id"`
	Direction        schema.Direction `json:"direction"`
	Table            string           `json:"table,omitempty"`
	Filename         string           `json:"filename,omitempty"`
	Selected         []string         `json:"selectedColumns"`
	Status           JobStatus        `json:"status"`
	RecordsProcessed *int             `json:"recordsProcessed,omitempty"`
	Message          string           `json:"message,omitempty"`
	Error            string           `json:"error,omitempty"`
	StartedAt        time.Time        `json:"startedAt"`
	CompletedAt      *time.Time       `json:"completedAt,omitempty"`
}

// FileSettings is the persisted part of a flat-file config. Content is never
// saved.
type FileSettings struct {
	Filename  string `json:"filename"`
	Delimiter string `json:"delimiter"`
}

// SavedConfig is a named transfer setup owned by a user.
type SavedConfig struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Direction schema.Direction    `json:"direction"`
	Source    schema.SourceConfig `json:"source"`
	File      FileSettings        `json:"file"`
	Table     string              `json:"table,omitempty"`
	Selected  []string            `json:"selectedColumns"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// SavedConfigInput carries the editable fields of a SavedConfig.
type SavedConfigInput struct {
	Name      string              `json:"name"`
	Direction schema.Direction    `json:"direction"`
	Source    schema.SourceConfig `json:"source"`
	File      FileSettings        `json:"file"`
	Table     string              `json:"table"`
	Selected  []string            `json:"selectedColumns"`
}

// User is an account that owns saved configs and jobs.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is returned by register and login.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

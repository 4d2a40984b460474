// Package schema defines the data contract shared by the flat-file engine,
// the source connector and the transport layer: column descriptors, rows and
// the uniform ingestion result.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ScalarType is the inferred type tag of a column.
type ScalarType string

const (
	Integer ScalarType = "Integer"
	Float   ScalarType = "Float"
	Date    ScalarType = "Date"
	String  ScalarType = "String"
)

// ColumnDescriptor names a column and its scalar type.
type ColumnDescriptor struct {
	Name string     `json:"name" yaml:"name"`
	Type ScalarType `json:"type" yaml:"type"`
}

// Direction is the way data flows in a transfer.
type Direction string

const (
	// SourceToFile exports a source table into a delimited file.
	SourceToFile Direction = "source_to_file"
	// FileToSource runs an uploaded file through the flat-file import/export.
	FileToSource Direction = "file_to_source"
)

// ParseDirection validates a direction string.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case SourceToFile, FileToSource:
		return d, nil
	default:
		return "", fmt.Errorf("invalid direction %q: must be %s or %s", s, SourceToFile, FileToSource)
	}
}

// SourceConfig is the connection form for the database side of a transfer.
type SourceConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
}

// Redacted returns a copy without the password, safe to hand back to clients.
func (c SourceConfig) Redacted() SourceConfig {
	c.Password = ""
	return c
}

// IngestionResult is the outcome of a terminal transfer operation.
//
// Build values with Succeeded or Failed; a successful result never carries an
// error and a failed one never carries a count or message.
type IngestionResult struct {
	Success          bool   `json:"success" yaml:"success"`
	RecordsProcessed *int   `json:"recordsProcessed,omitempty" yaml:"recordsProcessed,omitempty"`
	Message          string `json:"message,omitempty" yaml:"message,omitempty"`
	Error            string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded returns a successful result for n processed records.
func Succeeded(n int, message string) IngestionResult {
	return IngestionResult{Success: true, RecordsProcessed: &n, Message: message}
}

// Failed returns a failed result carrying err's message.
func Failed(err error) IngestionResult {
	if err == nil {
		err = fmt.Errorf("unknown failure")
	}
	return IngestionResult{Success: false, Error: err.Error()}
}

// Records returns the processed record count, or 0 for a failed result.
func (r IngestionResult) Records() int {
	if r.RecordsProcessed == nil {
		return 0
	}
	return *r.RecordsProcessed
}

// MarshalJSON keeps the success/failure shape even when a caller built the
// struct by hand.
func (r IngestionResult) MarshalJSON() ([]byte, error) {
	type plain IngestionResult
	out := plain(r)
	if out.Success {
		out.Error = ""
	} else {
		out.RecordsProcessed = nil
		out.Message = ""
	}
	return json.Marshal(out)
}

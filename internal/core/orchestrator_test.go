package core

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/flatbridge/internal/flatfile"
	"github.com/JonMunkholm/flatbridge/internal/schema"
)

// fakeConnector records calls; unset Fn fields return zero values.
type fakeConnector struct {
	tablesFn       func(ctx context.Context, src schema.SourceConfig) ([]string, error)
	columnsFn      func(ctx context.Context, src schema.SourceConfig, table string) ([]schema.ColumnDescriptor, error)
	previewFn      func(ctx context.Context, src schema.SourceConfig, table string, selected []string) (schema.RowSet, error)
	importExportFn func(ctx context.Context, src schema.SourceConfig, file flatfile.Config, table string, selected []string) schema.IngestionResult

	exportCalls int
}

func (f *fakeConnector) Tables(ctx context.Context, src schema.SourceConfig) ([]string, error) {
	if f.tablesFn != nil {
		return f.tablesFn(ctx, src)
	}
	return []string{}, nil
}

func (f *fakeConnector) Columns(ctx context.Context, src schema.SourceConfig, table string) ([]schema.ColumnDescriptor, error) {
	if f.columnsFn != nil {
		return f.columnsFn(ctx, src, table)
	}
	return nil, nil
}

func (f *fakeConnector) Preview(ctx context.Context, src schema.SourceConfig, table string, selected []string) (schema.RowSet, error) {
	if f.previewFn != nil {
		return f.previewFn(ctx, src, table, selected)
	}
	return schema.RowSet{}, nil
}

func (f *fakeConnector) ImportExport(ctx context.Context, src schema.SourceConfig, file flatfile.Config, table string, selected []string) schema.IngestionResult {
	f.exportCalls++
	if f.importExportFn != nil {
		return f.importExportFn(ctx, src, file, table, selected)
	}
	return schema.Succeeded(0, "")
}

func TestOrchestrator_FileToSource(t *testing.T) {
	dir := t.TempDir()
	conn := &fakeConnector{}
	o := NewOrchestrator(flatfile.NewEngine(dir), conn)

	req := TransferRequest{
		Direction: schema.FileToSource,
		File:      flatfile.Config{Filename: "data.csv", Content: flatfile.TextContent("id,name\n1,a\n2,b\n")},
		Selected:  []string{"name"},
	}
	result := o.Transfer(context.Background(), req)

	if !result.Success {
		t.Fatalf("Transfer() failed: %s", result.Error)
	}
	if got := result.Records(); got != 2 {
		t.Errorf("Records() = %d, want 2", got)
	}
	if conn.exportCalls != 0 {
		t.Errorf("connector called %d times, want 0", conn.exportCalls)
	}

	data, err := os.ReadFile(filepath.Join(dir, "data.csv"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got, want := string(data), "name\na\nb\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestOrchestrator_SourceToFileReturnsConnectorResult(t *testing.T) {
	want := schema.Succeeded(42, "Successfully exported 42 records to out/people.csv")

	var gotTable string
	var gotSelected []string
	var gotSrc schema.SourceConfig
	conn := &fakeConnector{
		importExportFn: func(_ context.Context, src schema.SourceConfig, _ flatfile.Config, table string, selected []string) schema.IngestionResult {
			gotSrc, gotTable, gotSelected = src, table, selected
			return want
		},
	}
	o := NewOrchestrator(flatfile.NewEngine(t.TempDir()), conn)

	req := TransferRequest{
		Direction: schema.SourceToFile,
		Source:    schema.SourceConfig{Host: "localhost", Database: "main"},
		Table:     "people",
		Selected:  []string{"id", "name"},
	}
	got := o.Transfer(context.Background(), req)

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Transfer() = %+v, want %+v", got, want)
	}
	if gotTable != "people" || !reflect.DeepEqual(gotSelected, req.Selected) || gotSrc != req.Source {
		t.Errorf("connector got (%+v, %q, %v)", gotSrc, gotTable, gotSelected)
	}
}

func TestOrchestrator_FailedResultPassesThrough(t *testing.T) {
	conn := &fakeConnector{
		importExportFn: func(context.Context, schema.SourceConfig, flatfile.Config, string, []string) schema.IngestionResult {
			return schema.IngestionResult{Success: false, Error: "table not found: main.ghost"}
		},
	}
	o := NewOrchestrator(flatfile.NewEngine(t.TempDir()), conn)

	got := o.Transfer(context.Background(), TransferRequest{Direction: schema.SourceToFile, Table: "ghost"})
	if got.Success || got.Error != "table not found: main.ghost" {
		t.Errorf("Transfer() = %+v", got)
	}
}

func TestOrchestrator_Failures(t *testing.T) {
	tests := []struct {
		name    string
		orch    *Orchestrator
		req     TransferRequest
		wantErr string
	}{
		{
			name:    "no connector",
			orch:    NewOrchestrator(flatfile.NewEngine(t.TempDir()), nil),
			req:     TransferRequest{Direction: schema.SourceToFile, Table: "t"},
			wantErr: "source connector not configured",
		},
		{
			name:    "unknown direction",
			orch:    NewOrchestrator(flatfile.NewEngine(t.TempDir()), &fakeConnector{}),
			req:     TransferRequest{Direction: "sideways"},
			wantErr: "unknown direction",
		},
		{
			name:    "missing file content",
			orch:    NewOrchestrator(flatfile.NewEngine(t.TempDir()), nil),
			req:     TransferRequest{Direction: schema.FileToSource, File: flatfile.Config{Filename: "x.csv"}},
			wantErr: "Missing Input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.orch.Transfer(context.Background(), tt.req)
			if got.Success {
				t.Fatal("Transfer() succeeded, want failure")
			}
			if got.RecordsProcessed != nil {
				t.Errorf("RecordsProcessed = %v, want nil", *got.RecordsProcessed)
			}
			if !strings.Contains(got.Error, tt.wantErr) {
				t.Errorf("Error = %q, want it to contain %q", got.Error, tt.wantErr)
			}
		})
	}
}

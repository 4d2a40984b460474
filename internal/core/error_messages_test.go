package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/flatbridge/internal/auth"
	"github.com/JonMunkholm/flatbridge/internal/flatfile"
)

func TestMapError(t *testing.T) {
	_, _, emptyErr := flatfile.Parse("", ',')
	_, _, noColsErr := flatfile.Parse(" , \n1,2\n", ',')

	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{"nil error returns empty", nil, "", ""},
		{"empty input kind", emptyErr, "FILE002", "The file is empty"},
		{"no columns kind", noColsErr, "FILE003", "No usable columns were found"},
		{"missing input wrapped", fmt.Errorf("load: %w", flatfile.ErrMissingInput), "FILE001", "No file content was supplied"},
		{"io failure", &flatfile.Error{Kind: flatfile.IOFailure, Msg: "write"}, "FILE004", "The file could not be read or written"},
		{"not found", fmt.Errorf("job %w", ErrNotFound), "JOB001", "The requested item was not found"},
		{"busy", ErrTooManyTransfers, "XFR001", "The system is busy running other transfers"},
		{"cancelled", fmt.Errorf("query: %w", context.Canceled), "XFR002", "Request was cancelled"},
		{"deadline", context.DeadlineExceeded, "XFR003", "Request timed out"},
		{"bad credentials", auth.ErrInvalidCredentials, "AUTH001", "Invalid username or password"},
		{"bad token", fmt.Errorf("%w: expired", auth.ErrInvalidToken), "AUTH002", "Your session is invalid or has expired"},
		{"no connector", ErrNoConnector, "SRC002", "No data source is configured"},
		{"duplicate key", errors.New("ERROR: duplicate key value violates unique constraint"), "DB001", "A record with this name already exists"},
		{"connection refused", errors.New("dial tcp: connection refused"), "DB003", "Unable to connect to database"},
		{"table not found", errors.New("table not found: main.ghost"), "SRC001", "Table not found"},
		{"duckdb catalog", errors.New("Catalog Error: Table with name x does not exist"), "SRC003", "The source rejected the query"},
		{"invalid delimiter", errors.New(`invalid delimiter "::"`), "CFG001", "The delimiter is not valid"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001", "Too many requests"},
		{"unknown error", errors.New("some random internal error"), "ERR000", "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapResultError(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"", ""},
		{"Missing Input: no file content supplied", "FILE001"},
		{"Empty Input: file has a header but no data rows", "FILE002"},
		{"No Columns: none of the selected columns exist in the file", "FILE003"},
		{"I/O Failure: rename: permission denied", "FILE004"},
		{"table not found: main.x", "SRC001"},
		{"something odd", "ERR000"},
	}
	for _, tt := range tests {
		if got := MapResultError(tt.text).Code; got != tt.want {
			t.Errorf("MapResultError(%q).Code = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrTooManyTransfers)
	want := "The system is busy running other transfers (Code: XFR001). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", flatfile.ErrEmptyInput, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	if got := NewUserError(nil); got != nil {
		t.Errorf("NewUserError(nil) = %v, want nil", got)
	}

	tech := fmt.Errorf("list jobs: %w", errors.New("connection reset by peer"))
	ue := NewUserError(tech)
	if ue.Error() != "Database connection was interrupted" {
		t.Errorf("Error() = %q", ue.Error())
	}
	if !errors.Is(ue, tech) {
		t.Error("Unwrap() should return the technical error")
	}
}

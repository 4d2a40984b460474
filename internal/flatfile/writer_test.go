package flatfile

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/JonMunkholm/flatbridge/internal/schema"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		name   string
		delim  rune
		header []string
		rows   schema.RowSet
		want   string
	}{
		{
			name:   "plain",
			delim:  ',',
			header: []string{"a", "b"},
			rows:   schema.RowSet{schema.RowOf("a", "1", "b", "2")},
			want:   "a,b\n1,2\n",
		},
		{
			name:   "field with delimiter quoted",
			delim:  ',',
			header: []string{"name"},
			rows:   schema.RowSet{schema.RowOf("name", "Doe, Jane")},
			want:   "name\n\"Doe, Jane\"\n",
		},
		{
			name:   "embedded quote doubled",
			delim:  ',',
			header: []string{"q"},
			rows:   schema.RowSet{schema.RowOf("q", `say "hi"`)},
			want:   "q\n\"say \"\"hi\"\"\"\n",
		},
		{
			name:   "semicolon leaves commas alone",
			delim:  ';',
			header: []string{"a", "b"},
			rows:   schema.RowSet{schema.RowOf("a", "1,5", "b", "x")},
			want:   "a;b\n1,5;x\n",
		},
		{
			name:   "missing column written empty",
			delim:  ',',
			header: []string{"a", "b"},
			rows:   schema.RowSet{schema.RowOf("a", "1")},
			want:   "a,b\n1,\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, tt.delim, tt.header, tt.rows); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Write() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

// A quoted field containing the delimiter parses to its unquoted content and
// survives a write/parse cycle unchanged.
func TestWriteParse_QuotingRoundTrip(t *testing.T) {
	header := []string{"a", "b"}
	rows := schema.RowSet{
		schema.RowOf("a", "x,y", "b", `he said "no"`),
		schema.RowOf("a", "multi\nline", "b", "plain"),
	}

	var buf bytes.Buffer
	if err := Write(&buf, ',', header, rows); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	_, got, err := Parse(buf.String(), ',')
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("rows = %d, want %d", len(got), len(rows))
	}
	for i := range rows {
		if !got[i].Equal(rows[i]) {
			t.Errorf("row %d = %v, want %v", i, got[i].Map(), rows[i].Map())
		}
	}
}

func TestOutputName(t *testing.T) {
	tests := map[string]string{
		"report.csv":         "report.csv",
		"  report.csv  ":     "report.csv",
		"../../etc/passwd":   "passwd",
		"/abs/path/data.tsv": "data.tsv",
		"":                   DefaultOutputName,
		"..":                 DefaultOutputName,
		"dir/":               "dir",
	}
	for in, want := range tests {
		if got := OutputName(in); got != want {
			t.Errorf("OutputName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPersist_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()

	path, err := Persist(dir, "out.csv", ',', []string{"a"}, schema.RowSet{schema.RowOf("a", "1")})
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if path != filepath.Join(dir, "out.csv") {
		t.Errorf("path = %q", path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir entries = %q, want only out.csv", names)
	}
}

func TestPersist_Overwrites(t *testing.T) {
	dir := t.TempDir()
	header := []string{"a"}

	if _, err := Persist(dir, "out.csv", ',', header, schema.RowSet{schema.RowOf("a", "old")}); err != nil {
		t.Fatal(err)
	}
	if _, err := Persist(dir, "out.csv", ',', header, schema.RowSet{schema.RowOf("a", "new")}); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a\nnew\n" {
		t.Errorf("content = %q, want %q", got, "a\nnew\n")
	}
}

func TestPersist_FileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := t.TempDir()

	path, err := Persist(dir, "out.csv", ',', []string{"a"}, schema.RowSet{schema.RowOf("a", "1")})
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm(); got != 0o644 {
		t.Errorf("mode = %v, want %v", got, os.FileMode(0o644))
	}
}

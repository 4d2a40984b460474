package main

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/flatbridge/internal/schema"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const people = "id,name,joined\n1,Ada,2024-01-05\n2,Grace,2024-02-11\n"

func TestColumns(t *testing.T) {
	path := writeFile(t, t.TempDir(), "people.csv", people)

	out, err := runCmd(t, "columns", path)
	require.NoError(t, err)

	var cols []schema.ColumnDescriptor
	require.NoError(t, json.Unmarshal([]byte(out), &cols))
	assert.Equal(t, []schema.ColumnDescriptor{
		{Name: "id", Type: schema.Integer},
		{Name: "name", Type: schema.String},
		{Name: "joined", Type: schema.Date},
	}, cols)
}

func TestColumns_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "people.csv", people)

	out, err := runCmd(t, "columns", path, "-o", "yaml")
	require.NoError(t, err)

	var cols []schema.ColumnDescriptor
	require.NoError(t, yaml.Unmarshal([]byte(out), &cols))
	assert.Len(t, cols, 3)
}

func TestColumns_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("a|b\n1|2\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	path := writeFile(t, t.TempDir(), "data.csv.gz", buf.String())

	out, err := runCmd(t, "columns", path, "--delimiter", "pipe")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "b"`)
}

func TestPreview(t *testing.T) {
	path := writeFile(t, t.TempDir(), "people.csv", people)

	out, err := runCmd(t, "preview", path, "--columns", "name")
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Equal(t, []map[string]string{{"name": "Ada"}, {"name": "Grace"}}, rows)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "people.csv", people)
	outDir := filepath.Join(dir, "out")

	out, err := runCmd(t, "export", path, "--columns", "name,id", "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, `"recordsProcessed": 2`)

	data, err := os.ReadFile(filepath.Join(outDir, "people.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,Ada\n2,Grace\n", string(data))
}

func TestExport_FailureExitsNonZero(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.csv", "id,name\n")

	out, err := runCmd(t, "export", path, "--columns", "id", "--out", dir)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Empty Input"), err.Error())
	assert.Contains(t, out, `"success": false`)
}

func TestLoadTablesUnload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "people.csv", people)
	db := filepath.Join(dir, "wh.duckdb")

	out, err := runCmd(t, "load", path, "--db", db, "--table", "people", "--columns", "id,name")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully loaded 2 records into people")

	out, err = runCmd(t, "tables", "--db", db)
	require.NoError(t, err)
	var tables []string
	require.NoError(t, json.Unmarshal([]byte(out), &tables))
	assert.Equal(t, []string{"people"}, tables)

	_, err = runCmd(t, "unload", "--db", db, "--table", "people", "--columns", "name", "--out", dir, "--file", "names.tsv", "-d", "tab")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "names.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "name\nAda\nGrace\n", string(data))
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "people.csv", people)

	tests := []struct {
		name string
		args []string
	}{
		{"bad output format", []string{"columns", path, "-o", "xml"}},
		{"bad delimiter", []string{"columns", path, "-d", "::"}},
		{"missing file", []string{"columns", filepath.Join(dir, "nope.csv")}},
		{"missing db flag", []string{"tables"}},
		{"no args", []string{"preview"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

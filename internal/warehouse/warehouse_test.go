package warehouse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/flatbridge/internal/flatfile"
	"github.com/JonMunkholm/flatbridge/internal/schema"
)

func setupWarehouse(t *testing.T) (*Warehouse, string) {
	t.Helper()
	dir := t.TempDir()

	w, err := Open("", dir)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	return w, dir
}

func seedPeople(t *testing.T, w *Warehouse, n int) {
	t.Helper()
	rows := make(schema.RowSet, n)
	for i := range rows {
		rows[i] = schema.RowOf("id", fmt.Sprint(i+1), "name", fmt.Sprintf("user%d", i+1), "city", "Oslo")
	}
	loaded, err := w.Load(context.Background(), schema.SourceConfig{}, "people", []string{"id", "name", "city"}, rows)
	require.NoError(t, err)
	require.Equal(t, n, loaded)
}

func TestTables(t *testing.T) {
	w, _ := setupWarehouse(t)
	ctx := context.Background()

	tables, err := w.Tables(ctx, schema.SourceConfig{})
	require.NoError(t, err)
	assert.Empty(t, tables)

	seedPeople(t, w, 1)
	_, err = w.DB().Exec(`CREATE TABLE accounts (id INTEGER)`)
	require.NoError(t, err)

	tables, err = w.Tables(ctx, schema.SourceConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts", "people"}, tables)
}

func TestTables_SchemaFromSource(t *testing.T) {
	w, _ := setupWarehouse(t)
	ctx := context.Background()

	_, err := w.Load(ctx, schema.SourceConfig{Database: "sales"}, "orders",
		[]string{"id"}, schema.RowSet{schema.RowOf("id", "1")})
	require.NoError(t, err)

	tables, err := w.Tables(ctx, schema.SourceConfig{Database: "sales"})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, tables)

	tables, err = w.Tables(ctx, schema.SourceConfig{})
	require.NoError(t, err)
	assert.Empty(t, tables)

	w.WithSchema("sales")
	tables, err = w.Tables(ctx, schema.SourceConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, tables)
}

func TestColumns_MapsTypes(t *testing.T) {
	w, _ := setupWarehouse(t)

	_, err := w.DB().Exec(`CREATE TABLE metrics (
		id INTEGER, score DOUBLE, price DECIMAL(10,2), day DATE, ts TIMESTAMP, note VARCHAR
	)`)
	require.NoError(t, err)

	cols, err := w.Columns(context.Background(), schema.SourceConfig{}, "metrics")
	require.NoError(t, err)

	want := []schema.ColumnDescriptor{
		{Name: "id", Type: schema.Integer},
		{Name: "score", Type: schema.Float},
		{Name: "price", Type: schema.Float},
		{Name: "day", Type: schema.Date},
		{Name: "ts", Type: schema.Date},
		{Name: "note", Type: schema.String},
	}
	assert.Equal(t, want, cols)
}

func TestColumns_UnknownTable(t *testing.T) {
	w, _ := setupWarehouse(t)

	_, err := w.Columns(context.Background(), schema.SourceConfig{}, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
}

func TestScalarTypeOf(t *testing.T) {
	tests := []struct {
		in   string
		want schema.ScalarType
	}{
		{"BIGINT", schema.Integer},
		{"integer", schema.Integer},
		{"UBIGINT", schema.Integer},
		{"DOUBLE", schema.Float},
		{"DECIMAL(18,3)", schema.Float},
		{"DATE", schema.Date},
		{"TIMESTAMP WITH TIME ZONE", schema.Date},
		{"VARCHAR", schema.String},
		{"BOOLEAN", schema.String},
		{"BLOB", schema.String},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScalarTypeOf(tt.in), tt.in)
	}
}

func TestPreview_HeaderOrderAndLimit(t *testing.T) {
	w, _ := setupWarehouse(t)
	seedPeople(t, w, 150)

	rows, err := w.Preview(context.Background(), schema.SourceConfig{}, "people", []string{"name", "id", "ghost"})
	require.NoError(t, err)
	require.Len(t, rows, flatfile.PreviewLimit)

	assert.Equal(t, []string{"id", "name"}, rows[0].Names())
	v, ok := rows[0].Get("id")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestPreview_NoSelectedColumns(t *testing.T) {
	w, _ := setupWarehouse(t)
	seedPeople(t, w, 3)

	rows, err := w.Preview(context.Background(), schema.SourceConfig{}, "people", []string{"ghost"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPreview_NullRendersEmpty(t *testing.T) {
	w, _ := setupWarehouse(t)

	_, err := w.DB().Exec(`CREATE TABLE t (a INTEGER, b VARCHAR); INSERT INTO t VALUES (1, NULL)`)
	require.NoError(t, err)

	rows, err := w.Preview(context.Background(), schema.SourceConfig{}, "t", []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	b, ok := rows[0].Get("b")
	assert.True(t, ok)
	assert.Equal(t, "", b)
}

func TestImportExport_WritesFile(t *testing.T) {
	w, dir := setupWarehouse(t)
	seedPeople(t, w, 3)

	file := flatfile.Config{Filename: "people_out.tsv", Delimiter: '\t'}
	result := w.ImportExport(context.Background(), schema.SourceConfig{}, file, "people", []string{"name", "id"})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 3, result.Records())
	assert.Contains(t, result.Message, "Successfully exported 3 records")

	data, err := os.ReadFile(filepath.Join(dir, "people_out.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "id\tname\n1\tuser1\n2\tuser2\n3\tuser3\n", string(data))
}

func TestImportExport_DefaultFilename(t *testing.T) {
	w, dir := setupWarehouse(t)
	seedPeople(t, w, 2)

	result := w.ImportExport(context.Background(), schema.SourceConfig{}, flatfile.Config{}, "people", []string{"city"})
	require.True(t, result.Success, result.Error)

	data, err := os.ReadFile(filepath.Join(dir, "people.csv"))
	require.NoError(t, err)
	assert.Equal(t, "city\nOslo\nOslo\n", string(data))
}

func TestImportExport_Failures(t *testing.T) {
	w, _ := setupWarehouse(t)
	seedPeople(t, w, 2)
	ctx := context.Background()

	t.Run("no selected columns", func(t *testing.T) {
		result := w.ImportExport(ctx, schema.SourceConfig{}, flatfile.Config{}, "people", []string{"ghost"})
		assert.False(t, result.Success)
		assert.Nil(t, result.RecordsProcessed)
		assert.True(t, strings.HasPrefix(result.Error, "No Columns:"), result.Error)
	})

	t.Run("unknown table", func(t *testing.T) {
		result := w.ImportExport(ctx, schema.SourceConfig{}, flatfile.Config{}, "missing", []string{"id"})
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "table not found")
	})
}

func TestLoad_AppendsToExistingTable(t *testing.T) {
	w, _ := setupWarehouse(t)
	seedPeople(t, w, 2)

	n, err := w.Load(context.Background(), schema.SourceConfig{}, "people",
		[]string{"id", "name", "city"}, schema.RowSet{schema.RowOf("id", "3", "name", "c", "city", "Bergen")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var count int
	require.NoError(t, w.DB().QueryRow(`SELECT count(*) FROM people`).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestLoad_QuotedIdentifiers(t *testing.T) {
	w, _ := setupWarehouse(t)
	ctx := context.Background()

	header := []string{`odd "name"`, "with space"}
	_, err := w.Load(ctx, schema.SourceConfig{}, `my "table"`, header,
		schema.RowSet{schema.RowOf(`odd "name"`, "x", "with space", "y")})
	require.NoError(t, err)

	cols, err := w.Columns(ctx, schema.SourceConfig{}, `my "table"`)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, `odd "name"`, cols[0].Name)
	assert.Equal(t, schema.String, cols[0].Type)
}

func TestLoad_Validation(t *testing.T) {
	w, _ := setupWarehouse(t)
	ctx := context.Background()

	_, err := w.Load(ctx, schema.SourceConfig{}, " ", []string{"a"}, nil)
	assert.Error(t, err)

	_, err = w.Load(ctx, schema.SourceConfig{}, "t", nil, nil)
	assert.True(t, errors.Is(err, flatfile.ErrNoColumns))
}

// Package warehouse is the database side of a transfer, backed by an
// embedded DuckDB database.
//
// A SourceConfig's Database field names the schema to browse; the remaining
// connection fields are carried for the client and ignored here.
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/JonMunkholm/flatbridge/internal/flatfile"
	"github.com/JonMunkholm/flatbridge/internal/logging"
	"github.com/JonMunkholm/flatbridge/internal/schema"
)

// DefaultSchema is browsed when a source names no database.
const DefaultSchema = "main"

// ErrTableNotFound is returned when a table is not in the catalog.
var ErrTableNotFound = errors.New("table not found")

// Warehouse implements the transfer connector over a DuckDB database.
type Warehouse struct {
	db            *sql.DB
	outputDir     string
	defaultSchema string
}

// Open opens the DuckDB database at path (empty for in-memory) and writes
// exports under outputDir.
func Open(path, outputDir string) (*Warehouse, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return New(db, outputDir), nil
}

// New wraps an open DuckDB handle.
func New(db *sql.DB, outputDir string) *Warehouse {
	if outputDir == "" {
		outputDir = "."
	}
	return &Warehouse{db: db, outputDir: outputDir, defaultSchema: DefaultSchema}
}

// WithSchema sets the schema browsed when a source names none.
func (w *Warehouse) WithSchema(name string) *Warehouse {
	if name = strings.TrimSpace(name); name != "" {
		w.defaultSchema = name
	}
	return w
}

// DB returns the underlying handle.
func (w *Warehouse) DB() *sql.DB { return w.db }

// Close closes the database.
func (w *Warehouse) Close() error { return w.db.Close() }

func (w *Warehouse) schemaFor(src schema.SourceConfig) string {
	if s := strings.TrimSpace(src.Database); s != "" {
		return s
	}
	return w.defaultSchema
}

const tablesQuery = `
SELECT table_name
FROM information_schema.tables
WHERE table_catalog = current_database() AND table_schema = ?
ORDER BY table_name`

// Tables lists the tables and views of the source schema by name.
func (w *Warehouse) Tables(ctx context.Context, src schema.SourceConfig) ([]string, error) {
	rows, err := w.db.QueryContext(ctx, tablesQuery, w.schemaFor(src))
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

const columnsQuery = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_catalog = current_database() AND table_schema = ? AND table_name = ?
ORDER BY ordinal_position`

// Columns describes the columns of table in catalog order.
func (w *Warehouse) Columns(ctx context.Context, src schema.SourceConfig, table string) ([]schema.ColumnDescriptor, error) {
	sch := w.schemaFor(src)
	rows, err := w.db.QueryContext(ctx, columnsQuery, sch, table)
	if err != nil {
		return nil, fmt.Errorf("describe %s.%s: %w", sch, table, err)
	}
	defer rows.Close()

	var cols []schema.ColumnDescriptor
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, schema.ColumnDescriptor{Name: name, Type: ScalarTypeOf(dataType)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe %s.%s: %w", sch, table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, sch, table)
	}
	return cols, nil
}

// ScalarTypeOf maps a DuckDB type name to a scalar type.
func ScalarTypeOf(dataType string) schema.ScalarType {
	t := strings.ToUpper(strings.TrimSpace(dataType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}

	switch t {
	case "TINYINT", "SMALLINT", "INTEGER", "BIGINT", "HUGEINT",
		"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT", "UHUGEINT",
		"INT", "INT1", "INT2", "INT4", "INT8", "LONG", "SHORT":
		return schema.Integer
	case "FLOAT", "DOUBLE", "REAL", "DECIMAL", "NUMERIC", "FLOAT4", "FLOAT8":
		return schema.Float
	case "DATE":
		return schema.Date
	}
	if strings.HasPrefix(t, "TIMESTAMP") {
		return schema.Date
	}
	return schema.String
}

// Preview returns up to flatfile.PreviewLimit rows of the selected columns
// that exist in table, rendered as strings.
func (w *Warehouse) Preview(ctx context.Context, src schema.SourceConfig, table string, selected []string) (schema.RowSet, error) {
	cols, err := w.selectColumns(ctx, src, table, selected)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return schema.RowSet{}, nil
	}
	return w.readRows(ctx, w.schemaFor(src), table, cols, flatfile.PreviewLimit)
}

// ImportExport reads the selected columns of every row of table and writes
// them to a delimited file named by file.Filename (default <table>.csv). It
// never returns an error: failures are reported in the result.
func (w *Warehouse) ImportExport(ctx context.Context, src schema.SourceConfig, file flatfile.Config, table string, selected []string) (result schema.IngestionResult) {
	logger := logging.WithFields(ctx,
		"schema", w.schemaFor(src),
		"table", table,
		"selected", len(selected),
	)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("table export panicked", "panic", r)
			result = schema.Failed(fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	n, path, err := w.export(ctx, src, file, table, selected)
	if err != nil {
		logger.Warn("table export failed", "error", err)
		return schema.Failed(err)
	}

	logger.Info("table export completed",
		"records", n,
		"path", path,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return schema.Succeeded(n, fmt.Sprintf("Successfully exported %d records to %s", n, path))
}

func (w *Warehouse) export(ctx context.Context, src schema.SourceConfig, file flatfile.Config, table string, selected []string) (int, string, error) {
	cols, err := w.selectColumns(ctx, src, table, selected)
	if err != nil {
		return 0, "", err
	}
	if len(cols) == 0 {
		return 0, "", &flatfile.Error{Kind: flatfile.NoColumns, Msg: fmt.Sprintf("none of the selected columns exist in %s", table)}
	}

	rows, err := w.readRows(ctx, w.schemaFor(src), table, cols, 0)
	if err != nil {
		return 0, "", err
	}

	name := file.Filename
	if strings.TrimSpace(name) == "" {
		name = table + ".csv"
	}
	path, err := flatfile.Persist(w.outputDir, name, file.Delim(), cols, rows)
	if err != nil {
		return 0, "", err
	}
	return len(rows), path, nil
}

// selectColumns validates table against the catalog and returns the selected
// names it has, in catalog order.
func (w *Warehouse) selectColumns(ctx context.Context, src schema.SourceConfig, table string, selected []string) ([]string, error) {
	desc, err := w.Columns(ctx, src, table)
	if err != nil {
		return nil, err
	}
	header := make([]string, len(desc))
	for i, d := range desc {
		header[i] = d.Name
	}
	return flatfile.SelectColumns(header, selected), nil
}

// readRows selects cols from table cast to VARCHAR. NULL becomes "".
// limit <= 0 reads every row.
func (w *Warehouse) readRows(ctx context.Context, sch, table string, cols []string, limit int) (schema.RowSet, error) {
	exprs := make([]string, len(cols))
	for i, c := range cols {
		exprs[i] = fmt.Sprintf("CAST(%s AS VARCHAR)", quoteIdent(c))
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), qualified(sch, table))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read %s.%s: %w", sch, table, err)
	}
	defer rows.Close()

	out := schema.RowSet{}
	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := schema.NewRow(len(cols))
		for i, c := range cols {
			row.Set(c, vals[i].String)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s.%s: %w", sch, table, err)
	}
	return out, nil
}

// Load creates table (every column VARCHAR) when it does not exist and
// inserts rows in a single transaction. It returns the number of rows
// inserted.
func (w *Warehouse) Load(ctx context.Context, src schema.SourceConfig, table string, header []string, rows schema.RowSet) (int, error) {
	if strings.TrimSpace(table) == "" {
		return 0, fmt.Errorf("load: table name is required")
	}
	if len(header) == 0 {
		return 0, &flatfile.Error{Kind: flatfile.NoColumns, Msg: "load: header has no columns"}
	}

	sch := w.schemaFor(src)
	target := qualified(sch, table)

	quoted := make([]string, len(header))
	defs := make([]string, len(header))
	marks := make([]string, len(header))
	for i, h := range header {
		quoted[i] = quoteIdent(h)
		defs[i] = quoted[i] + " VARCHAR"
		marks[i] = "?"
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdent(sch)); err != nil {
		return 0, fmt.Errorf("create schema %s: %w", sch, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", target, strings.Join(defs, ", "))); err != nil {
		return 0, fmt.Errorf("create table %s: %w", target, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		target, strings.Join(quoted, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(header))
	for n, row := range rows {
		for i, h := range header {
			v, _ := row.Get(h)
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", n+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit load: %w", err)
	}
	return len(rows), nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func qualified(sch, table string) string {
	return quoteIdent(sch) + "." + quoteIdent(table)
}

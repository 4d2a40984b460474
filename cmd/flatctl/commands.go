package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/flatbridge/internal/flatfile"
	"github.com/JonMunkholm/flatbridge/internal/schema"
	"github.com/JonMunkholm/flatbridge/internal/warehouse"
)

func newColumnsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "columns FILE",
		Short: "Describe the columns of a file with their inferred types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.readFile(args[0])
			if err != nil {
				return err
			}
			cols, err := flatfile.NewEngine("").Columns(cfg)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), cols)
		},
	}
}

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Show the first rows of a file restricted to the selected columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.readFile(args[0])
			if err != nil {
				return err
			}
			rows, err := flatfile.NewEngine("").Preview(cfg, columns)
			if err != nil {
				return err
			}
			if rows == nil {
				rows = schema.RowSet{}
			}
			return opts.print(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "columns to keep (comma-separated)")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		columns []string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the selected columns of a file to the output directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.readFile(args[0])
			if err != nil {
				return err
			}
			result := flatfile.NewEngine(outDir).ImportExport(cmd.Context(), cfg, columns)
			return printResult(cmd, opts, result)
		},
	}
	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "columns to keep (comma-separated)")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}

type dbOptions struct {
	path   string
	schema string
}

func (d *dbOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.path, "db", "", "DuckDB database file (required)")
	cmd.Flags().StringVar(&d.schema, "schema", warehouse.DefaultSchema, "schema to use")
	_ = cmd.MarkFlagRequired("db")
}

func (d *dbOptions) open(outDir string) (*warehouse.Warehouse, error) {
	wh, err := warehouse.Open(d.path, outDir)
	if err != nil {
		return nil, err
	}
	return wh.WithSchema(d.schema), nil
}

func newLoadCmd(opts *rootOptions) *cobra.Command {
	var (
		db      dbOptions
		table   string
		columns []string
	)

	cmd := &cobra.Command{
		Use:   "load FILE",
		Short: "Append the rows of a file to a DuckDB table, creating it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.readFile(args[0])
			if err != nil {
				return err
			}
			header, rows, err := flatfile.NewEngine("").Read(cfg)
			if err != nil {
				return err
			}
			if len(columns) > 0 {
				header = flatfile.SelectColumns(header, columns)
			}

			wh, err := db.open("")
			if err != nil {
				return err
			}
			defer wh.Close()

			n, err := wh.Load(cmd.Context(), schema.SourceConfig{}, table, header, rows)
			if err != nil {
				return printResult(cmd, opts, schema.Failed(err))
			}
			return printResult(cmd, opts, schema.Succeeded(n, fmt.Sprintf("Successfully loaded %d records into %s", n, table)))
		},
	}
	db.register(cmd)
	cmd.Flags().StringVarP(&table, "table", "t", "", "target table (required)")
	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "columns to load (default: all)")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func newTablesCmd(opts *rootOptions) *cobra.Command {
	var db dbOptions

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables of a DuckDB database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wh, err := db.open("")
			if err != nil {
				return err
			}
			defer wh.Close()

			tables, err := wh.Tables(cmd.Context(), schema.SourceConfig{})
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), tables)
		},
	}
	db.register(cmd)
	return cmd
}

func newUnloadCmd(opts *rootOptions) *cobra.Command {
	var (
		db       dbOptions
		table    string
		columns  []string
		outDir   string
		filename string
	)

	cmd := &cobra.Command{
		Use:   "unload",
		Short: "Export the selected columns of a DuckDB table to a delimited file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, err := flatfile.NewConfig(filename, opts.delimiter, flatfile.NoContent())
			if err != nil {
				return err
			}

			wh, err := db.open(outDir)
			if err != nil {
				return err
			}
			defer wh.Close()

			result := wh.ImportExport(cmd.Context(), schema.SourceConfig{}, file, table, columns)
			return printResult(cmd, opts, result)
		},
	}
	db.register(cmd)
	cmd.Flags().StringVarP(&table, "table", "t", "", "source table (required)")
	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "columns to export (comma-separated)")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().StringVar(&filename, "file", "", "output file name (default: TABLE.csv)")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}

// printResult prints the result and turns a failed one into the command's
// error so the exit status reflects it.
func printResult(cmd *cobra.Command, opts *rootOptions, result schema.IngestionResult) error {
	if err := opts.print(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("%s", result.Error)
	}
	return nil
}

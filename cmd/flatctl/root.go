package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/flatbridge/internal/flatfile"
	"github.com/JonMunkholm/flatbridge/internal/logging"
)

type rootOptions struct {
	delimiter string
	output    string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "flatctl",
		Short:         "Inspect, project and load delimited files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(opts.output); err != nil {
				return err
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, "text"))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.delimiter, "delimiter", "d", ",", "field delimiter: a character or tab, comma, semicolon, pipe")
	pf.StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newColumnsCmd(opts),
		newPreviewCmd(opts),
		newExportCmd(opts),
		newLoadCmd(opts),
		newTablesCmd(opts),
		newUnloadCmd(opts),
	)
	return root
}

func validateOutputFormat(output string) error {
	if output != "json" && output != "yaml" {
		return fmt.Errorf("unsupported output format %q: use 'json' or 'yaml'", output)
	}
	return nil
}

// readFile builds a flat-file config from a path on disk. Compressed and
// UTF-16 files are decoded by the engine.
func (o *rootOptions) readFile(path string) (flatfile.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return flatfile.Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	return flatfile.NewConfig(filepath.Base(path), o.delimiter, flatfile.BytesContent(data))
}

// print writes v in the selected output format.
func (o *rootOptions) print(w io.Writer, v any) error {
	switch o.output {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

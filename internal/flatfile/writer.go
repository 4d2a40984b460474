package flatfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/flatbridge/internal/schema"
)

// DefaultOutputName is used when a transfer has no filename.
const DefaultOutputName = "export.csv"

// Write serializes header and rows as delimited text. Fields holding the
// delimiter, a quote or a line break are quoted with embedded quotes doubled.
func Write(w io.Writer, delim rune, header []string, rows schema.RowSet) error {
	if !validDelimiter(delim) {
		return fmt.Errorf("invalid delimiter %q", delim)
	}

	cw := csv.NewWriter(w)
	cw.Comma = delim

	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for _, row := range rows {
		for i, name := range header {
			record[i], _ = row.Get(name)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// OutputName reduces a requested filename to a safe base name.
func OutputName(filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == "/" || name == ".." || name == "" {
		return DefaultOutputName
	}
	return name
}

// Persist writes header and rows to dir/OutputName(filename) and returns the
// final path. The file is staged under a temporary name and renamed into place
// only after it is fully written, so a failure leaves nothing behind.
func Persist(dir, filename string, delim rune, header []string, rows schema.RowSet) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", newError(IOFailure, "create output directory", err)
	}

	target := filepath.Join(dir, OutputName(filename))

	tmp, err := os.CreateTemp(dir, ".flatbridge-*.tmp")
	if err != nil {
		return "", newError(IOFailure, "create output file", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := Write(tmp, delim, header, rows); err != nil {
		return "", newError(IOFailure, "write output file", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return "", newError(IOFailure, "set output file mode", err)
	}
	if err := tmp.Close(); err != nil {
		return "", newError(IOFailure, "close output file", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return "", newError(IOFailure, "move output file into place", err)
	}
	committed = true

	return target, nil
}

package flatfile

import (
	"regexp"
	"strings"
	"time"

	"github.com/JonMunkholm/flatbridge/internal/schema"
)

// numericRegex matches integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// dateLayouts are tried in order. Only values containing '-' are ever
// classified as dates, so layouts without a dash are not listed.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04",
	"1-2-2006",
	"01-02-2006",
	"2-Jan-2006",
	"02-Jan-2006",
	"Jan-02-2006",
	"1-2-06",
}

// InferTypes assigns a scalar type to each header column from the first data
// row only. Later rows are never consulted, so a column whose first value is
// atypical (a blank in a numeric column, say) gets the type of that value.
// With no data rows every column is String.
func InferTypes(header []string, rows schema.RowSet) []schema.ScalarType {
	types := make([]schema.ScalarType, len(header))
	if len(rows) == 0 {
		for i := range types {
			types[i] = schema.String
		}
		return types
	}

	sample := rows[0]
	for i, name := range header {
		v, _ := sample.Get(name)
		types[i] = InferValue(v)
	}
	return types
}

// InferValue classifies a single raw value.
func InferValue(raw string) schema.ScalarType {
	v := strings.TrimSpace(raw)
	if v == "" {
		return schema.String
	}
	if numericRegex.MatchString(v) {
		if strings.Contains(v, ".") {
			return schema.Float
		}
		return schema.Integer
	}
	if strings.Contains(v, "-") && isDate(v) {
		return schema.Date
	}
	return schema.String
}

func isDate(v string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

// Describe pairs header names with inferred types.
func Describe(header []string, rows schema.RowSet) []schema.ColumnDescriptor {
	types := InferTypes(header, rows)
	cols := make([]schema.ColumnDescriptor, len(header))
	for i, name := range header {
		cols[i] = schema.ColumnDescriptor{Name: name, Type: types[i]}
	}
	return cols
}

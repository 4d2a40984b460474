package flatfile

import "github.com/JonMunkholm/flatbridge/internal/schema"

// PreviewLimit caps the number of rows returned by a preview.
const PreviewLimit = 100

// SelectColumns returns the selected names present in header, in header
// order and without duplicates. Unknown names are dropped.
func SelectColumns(header, selected []string) []string {
	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		want[s] = true
	}

	out := make([]string, 0, len(selected))
	seen := make(map[string]bool, len(selected))
	for _, h := range header {
		if want[h] && !seen[h] {
			out = append(out, h)
			seen[h] = true
		}
	}
	return out
}

// Project keeps only the selected columns of every row. Row count and order
// are unchanged. A limit > 0 keeps at most that many leading rows.
func Project(rows schema.RowSet, header, selected []string, limit int) schema.RowSet {
	cols := SelectColumns(header, selected)

	n := len(rows)
	if limit > 0 && n > limit {
		n = limit
	}

	out := make(schema.RowSet, n)
	for i := 0; i < n; i++ {
		row := schema.NewRow(len(cols))
		for _, c := range cols {
			if v, ok := rows[i].Get(c); ok {
				row.Set(c, v)
			}
		}
		out[i] = row
	}
	return out
}

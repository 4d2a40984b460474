package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Row maps column names to raw string values, keeping insertion order.
type Row struct {
	names  []string
	values map[string]string
}

// RowSet is an ordered sequence of rows in file order.
type RowSet []Row

// NewRow returns an empty row sized for n columns.
func NewRow(n int) Row {
	return Row{
		names:  make([]string, 0, n),
		values: make(map[string]string, n),
	}
}

// RowOf builds a row from alternating name/value pairs. Intended for tests
// and literals; a trailing odd name is ignored.
func RowOf(pairs ...string) Row {
	r := NewRow(len(pairs) / 2)
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// Set stores value under name. The first value stored for a name wins;
// Set reports whether the value was stored.
func (r *Row) Set(name, value string) bool {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[name]; ok {
		return false
	}
	r.names = append(r.names, name)
	r.values[name] = value
	return true
}

// Get returns the value stored under name.
func (r Row) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Has reports whether the row holds name.
func (r Row) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Names returns the column names in insertion order.
func (r Row) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of columns in the row.
func (r Row) Len() int { return len(r.names) }

// Map returns a copy of the row as a plain map.
func (r Row) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Equal reports whether two rows hold the same names in the same order with
// the same values.
func (r Row) Equal(o Row) bool {
	if len(r.names) != len(o.names) {
		return false
	}
	for i, n := range r.names {
		if o.names[i] != n || o.values[n] != r.values[n] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the row as an object with keys in insertion order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[n])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping the key order of the document.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row: expected JSON object")
	}
	*r = NewRow(0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var val string
		if err := dec.Decode(&val); err != nil {
			return err
		}
		r.Set(key, val)
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML encodes the row as a mapping node with keys in insertion order.
func (r Row) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, n := range r.names {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.values[n]},
		)
	}
	return node, nil
}

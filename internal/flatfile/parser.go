package flatfile

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/JonMunkholm/flatbridge/internal/schema"
)

const bom = "\uFEFF"

// Parse splits delimited text into a header and rows.
//
// One leading byte-order mark is stripped and whitespace-only lines are
// skipped. The first remaining line is the header. Quoted fields may contain
// the delimiter or line breaks; a doubled quote inside quotes is one quote.
// Whitespace around a quoted field is ignored. Every field is trimmed. Rows
// shorter than the header are padded with "", longer rows are cut to the
// header width.
func Parse(text string, delim rune) ([]string, schema.RowSet, error) {
	if !validDelimiter(delim) {
		return nil, nil, fmt.Errorf("invalid delimiter %q", delim)
	}

	sc := &recordScanner{text: strings.TrimPrefix(text, bom), delim: delim}

	var (
		header []string
		rows   schema.RowSet
	)

	for {
		record, blank, ok := sc.next()
		if !ok {
			break
		}
		if blank {
			continue
		}

		if header == nil {
			var err error
			header, err = buildHeader(record)
			if err != nil {
				return nil, nil, err
			}
			continue
		}

		rows = append(rows, buildRow(header, record))
	}

	if header == nil {
		return nil, nil, newError(EmptyInput, "file has no non-empty lines", nil)
	}

	return header, rows, nil
}

// recordScanner splits text into records. Quotes are only special at the
// start of a field (after optional whitespace); anywhere else they are
// literal. An unterminated quoted field runs to the end of the input.
type recordScanner struct {
	text  string
	pos   int
	delim rune
}

// next returns the fields of the next record and whether its raw text is
// empty after trimming whitespace. ok is false at end of input.
func (s *recordScanner) next() (fields []string, blank bool, ok bool) {
	if s.pos >= len(s.text) {
		return nil, false, false
	}
	start := s.pos

	for {
		field, end := s.field()
		fields = append(fields, field)
		if end {
			break
		}
	}

	raw := s.text[start:s.pos]
	return fields, strings.TrimSpace(raw) == "", true
}

// field reads one field and consumes the delimiter or line break after it.
// end reports whether the field closed its record.
func (s *recordScanner) field() (value string, end bool) {
	fieldStart := s.pos
	s.skipSpace()
	if s.pos < len(s.text) && s.text[s.pos] == '"' {
		return s.quoted()
	}
	s.pos = fieldStart
	return s.unquoted()
}

func (s *recordScanner) quoted() (string, bool) {
	var b strings.Builder
	s.pos++ // opening quote
	for {
		i := strings.IndexByte(s.text[s.pos:], '"')
		if i < 0 {
			b.WriteString(s.text[s.pos:])
			s.pos = len(s.text)
			return b.String(), true
		}
		b.WriteString(s.text[s.pos : s.pos+i])
		s.pos += i + 1
		if s.pos < len(s.text) && s.text[s.pos] == '"' {
			b.WriteByte('"')
			s.pos++
			continue
		}
		break
	}

	closed := s.pos
	s.skipSpace()
	if end, ok := s.terminator(); ok {
		return b.String(), end
	}

	// Text after the closing quote: keep the quote and the rest literally.
	s.pos = closed
	b.WriteByte('"')
	tail, end := s.unquoted()
	b.WriteString(tail)
	return b.String(), end
}

func (s *recordScanner) unquoted() (string, bool) {
	start := s.pos
	for s.pos < len(s.text) {
		fieldEnd := s.pos
		if end, ok := s.terminator(); ok {
			return s.text[start:fieldEnd], end
		}
		_, size := utf8.DecodeRuneInString(s.text[s.pos:])
		s.pos += size
	}
	return s.text[start:], true
}

// terminator consumes a delimiter, a line break or end of input at the
// current position. end is true unless it was a delimiter.
func (s *recordScanner) terminator() (end bool, ok bool) {
	if s.pos >= len(s.text) {
		return true, true
	}
	r, size := utf8.DecodeRuneInString(s.text[s.pos:])
	switch {
	case r == s.delim:
		s.pos += size
		return false, true
	case r == '\n':
		s.pos++
		return true, true
	case r == '\r' && strings.HasPrefix(s.text[s.pos:], "\r\n"):
		s.pos += 2
		return true, true
	}
	return false, false
}

// skipSpace skips whitespace other than the delimiter and line breaks.
func (s *recordScanner) skipSpace() {
	for s.pos < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[s.pos:])
		if r == s.delim || r == '\n' || r == '\r' || !unicode.IsSpace(r) {
			return
		}
		s.pos += size
	}
}

// buildHeader trims the header fields and names blank ones Unnamed_A,
// Unnamed_B, ... in order of appearance, skipping names the header already
// uses.
func buildHeader(record []string) ([]string, error) {
	header := make([]string, len(record))
	blank := 0
	for i, f := range record {
		header[i] = strings.TrimSpace(f)
		if header[i] == "" {
			blank++
		}
	}
	if blank == len(header) {
		return nil, newError(NoColumns, "header line has no column names", nil)
	}

	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}
	unnamed := 0
	for i, h := range header {
		if h != "" {
			continue
		}
		name := "Unnamed_" + columnLetters(unnamed)
		for taken[name] {
			unnamed++
			name = "Unnamed_" + columnLetters(unnamed)
		}
		header[i] = name
		taken[name] = true
		unnamed++
	}
	return header, nil
}

func buildRow(header, record []string) schema.Row {
	row := schema.NewRow(len(header))
	for i, name := range header {
		value := ""
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		row.Set(name, value)
	}
	return row
}

// columnLetters converts a 0-based index to spreadsheet column letters:
// 0 -> A, 25 -> Z, 26 -> AA.
func columnLetters(index int) string {
	var b []byte
	for index++; index > 0; index /= 26 {
		index--
		b = append([]byte{byte('A' + index%26)}, b...)
	}
	return string(b)
}

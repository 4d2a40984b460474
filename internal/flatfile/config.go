package flatfile

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultDelimiter is used when a Config carries no delimiter.
const DefaultDelimiter = ','

// Config is the file side of a transfer. It is passed by value to every
// engine operation and never modified by them.
type Config struct {
	Filename  string
	Delimiter rune
	Content   Content
}

// NewConfig validates the delimiter spelling and builds a Config.
func NewConfig(filename, delimiter string, content Content) (Config, error) {
	d, err := ParseDelimiter(delimiter)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Filename:  strings.TrimSpace(filename),
		Delimiter: d,
		Content:   content,
	}, nil
}

// WithContent returns a copy of c carrying content.
func (c Config) WithContent(content Content) Config {
	c.Content = content
	return c
}

// Delim returns the effective delimiter, comma when none is set.
func (c Config) Delim() rune {
	if c.Delimiter == 0 {
		return DefaultDelimiter
	}
	return c.Delimiter
}

var delimiterNames = map[string]rune{
	`\t`:        '\t',
	"tab":       '\t',
	"comma":     ',',
	"semicolon": ';',
	"pipe":      '|',
}

// ParseDelimiter accepts a single character or one of the names
// tab, comma, semicolon, pipe (or the escape \t). Empty means comma.
func ParseDelimiter(s string) (rune, error) {
	if s == "" {
		return DefaultDelimiter, nil
	}
	if r, ok := delimiterNames[strings.ToLower(s)]; ok {
		return r, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q: must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if !validDelimiter(r) {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError && utf8.ValidRune(r)
}

// DelimiterName returns a printable name for a delimiter rune.
func DelimiterName(r rune) string {
	switch r {
	case '\t':
		return "tab"
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '|':
		return "pipe"
	default:
		return string(r)
	}
}

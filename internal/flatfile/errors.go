package flatfile

import "errors"

// Kind classifies a flat-file failure.
type Kind int

const (
	// MissingInput means no file content was supplied.
	MissingInput Kind = iota + 1
	// EmptyInput means the content has no non-empty lines.
	EmptyInput
	// NoColumns means the header line has no usable field names.
	NoColumns
	// IOFailure means reading or writing file content failed.
	IOFailure
)

func (k Kind) String() string {
	switch k {
	case MissingInput:
		return "Missing Input"
	case EmptyInput:
		return "Empty Input"
	case NoColumns:
		return "No Columns"
	case IOFailure:
		return "I/O Failure"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is matching against a kind.
var (
	ErrMissingInput = &Error{Kind: MissingInput}
	ErrEmptyInput   = &Error{Kind: EmptyInput}
	ErrNoColumns    = &Error{Kind: NoColumns}
	ErrIOFailure    = &Error{Kind: IOFailure}
)

// Error is a typed flat-file failure. Its text always starts with the kind
// name, e.g. "Missing Input: no file content supplied".
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of a flat-file error, or 0 if err is not one.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

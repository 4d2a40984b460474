package core

// error_messages.go maps technical errors to user-facing messages with a code
// that support can look up.
//
// Codes by category:
//
//	FILE001  Missing input        no file content was supplied
//	FILE002  Empty input          the file has no content or no data rows
//	FILE003  No columns           no usable header, or no selected column exists
//	FILE004  I/O failure          the file could not be read, decoded or written
//
//	DB001    Duplicate            a record with the same name already exists
//	DB002    Foreign key          a referenced record does not exist
//	DB003    Connection refused   the database is unreachable
//	DB004    Connection reset     the database connection dropped
//	DB005    Deadlock             conflicting operations, retry
//
//	SRC001   Table not found      the source has no such table
//	SRC002   No connector         the server has no source configured
//	SRC003   Query failed         the source rejected the query
//
//	AUTH001  Bad credentials      unknown user or wrong password
//	AUTH002  Bad token            missing, invalid or expired bearer token
//	AUTH003  Weak password        password below the minimum length
//	AUTH004  Username taken       registration with an existing username
//
//	CFG001   Bad delimiter        delimiter is not a single usable character
//	CFG002   Bad direction        direction is not source_to_file or file_to_source
//	CFG003   Missing field        a required request field is empty
//	CFG004   Bad request          the request body could not be decoded
//
//	JOB001   Not found            the job or saved configuration does not exist
//
//	XFR001   Busy                 every transfer slot is taken
//	XFR002   Cancelled            the request was cancelled
//	XFR003   Timed out            the request ran past its deadline
//
//	RATE001  Rate limited         too many requests from this client
//
//	ERR000   Unknown              anything else; check the logs
//
// Typed errors are matched first (flat-file kinds, then sentinels). The rest
// are matched case-insensitively by substring; the first pattern wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/flatbridge/internal/auth"
	"github.com/JonMunkholm/flatbridge/internal/flatfile"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var fileMessages = map[flatfile.Kind]UserMessage{
	flatfile.MissingInput: {
		Message: "No file content was supplied",
		Action:  "Select or upload a file before continuing",
		Code:    "FILE001",
	},
	flatfile.EmptyInput: {
		Message: "The file is empty",
		Action:  "Upload a file with a header row and at least one data row",
		Code:    "FILE002",
	},
	flatfile.NoColumns: {
		Message: "No usable columns were found",
		Action:  "Check the header row, the delimiter and the selected columns",
		Code:    "FILE003",
	},
	flatfile.IOFailure: {
		Message: "The file could not be read or written",
		Action:  "Check the file encoding and compression, then try again",
		Code:    "FILE004",
	},
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrNotFound, UserMessage{
		Message: "The requested item was not found",
		Action:  "Refresh the list and try again",
		Code:    "JOB001",
	}},
	{ErrDuplicateName, UserMessage{
		Message: "A record with this name already exists",
		Action:  "Choose a different name",
		Code:    "DB001",
	}},
	{ErrUsernameTaken, UserMessage{
		Message: "That username is already taken",
		Action:  "Choose a different username",
		Code:    "AUTH004",
	}},
	{auth.ErrInvalidCredentials, UserMessage{
		Message: "Invalid username or password",
		Action:  "Check your credentials and try again",
		Code:    "AUTH001",
	}},
	{auth.ErrInvalidToken, UserMessage{
		Message: "Your session is invalid or has expired",
		Action:  "Sign in again",
		Code:    "AUTH002",
	}},
	{auth.ErrWeakPassword, UserMessage{
		Message: fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength),
		Action:  "Choose a longer password",
		Code:    "AUTH003",
	}},
	{ErrNoConnector, UserMessage{
		Message: "No data source is configured",
		Action:  "Ask an administrator to configure the source database",
		Code:    "SRC002",
	}},
	{ErrTooManyTransfers, UserMessage{
		Message: "The system is busy running other transfers",
		Action:  "Please wait a moment and try again",
		Code:    "XFR001",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "XFR002",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or table, or try again later",
		Code:    "XFR003",
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Database
	{"duplicate key", UserMessage{
		Message: "A record with this name already exists",
		Action:  "Choose a different name",
		Code:    "DB001",
	}},
	{"unique constraint", UserMessage{
		Message: "A record with this name already exists",
		Action:  "Choose a different name",
		Code:    "DB001",
	}},
	{"foreign key", UserMessage{
		Message: "Referenced record does not exist",
		Action:  "Sign in again and retry",
		Code:    "DB002",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB003",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB004",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB005",
	}},

	// Source
	{"table not found", UserMessage{
		Message: "Table not found",
		Action:  "Verify the table name and database",
		Code:    "SRC001",
	}},
	{"catalog error", UserMessage{
		Message: "The source rejected the query",
		Action:  "Verify the table and column names",
		Code:    "SRC003",
	}},
	{"binder error", UserMessage{
		Message: "The source rejected the query",
		Action:  "Verify the table and column names",
		Code:    "SRC003",
	}},

	// Request validation
	{"invalid delimiter", UserMessage{
		Message: "The delimiter is not valid",
		Action:  "Use a single character such as , ; | or tab",
		Code:    "CFG001",
	}},
	{"invalid direction", UserMessage{
		Message: "The transfer direction is not valid",
		Action:  "Use source_to_file or file_to_source",
		Code:    "CFG002",
	}},
	{"is required", UserMessage{
		Message: "A required field is missing",
		Action:  "Fill in every required field",
		Code:    "CFG003",
	}},
	{"invalid request", UserMessage{
		Message: "The request could not be read",
		Action:  "Check the request body and try again",
		Code:    "CFG004",
	}},

	// Transfer
	{"timeout", UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or table, or try again later",
		Code:    "XFR003",
	}},

	// Rate limiting
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is the ERR000 fallback. Support should check the logs for
// the technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	_, _, err := flatfile.Parse("", ',') // Empty Input
//	msg := MapError(err)
//	// msg.Code == "FILE002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if kind := flatfile.KindOf(err); kind != 0 {
		if msg, ok := fileMessages[kind]; ok {
			return msg
		}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// MapResultError maps the error text of a failed IngestionResult. Results
// carry text only, so the flat-file kind is recovered from the prefix.
func MapResultError(text string) UserMessage {
	if text == "" {
		return UserMessage{}
	}
	for kind, msg := range fileMessages {
		if strings.HasPrefix(text, kind.String()+":") {
			return msg
		}
	}
	return MapError(errors.New(text))
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error (for logs) with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err; nil in, nil out.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

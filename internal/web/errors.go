package web

// errors.go turns errors into responses. The technical error is logged with
// the request id; the client gets the mapped user message as JSON, or as an
// HTML fragment for HTMX requests.

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/flatbridge/internal/core"
	"github.com/JonMunkholm/flatbridge/internal/logging"
	"github.com/JonMunkholm/flatbridge/internal/web/templates"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the mapped message. A zero status is
// derived from the error code.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)
	if status == 0 {
		status = statusFor(msg.Code)
	}

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
			logger.Error("render error alert", "error", err)
		}
		return
	}

	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// statusFor maps a user message code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case "JOB001", "SRC001":
		return http.StatusNotFound
	case "AUTH001", "AUTH002":
		return http.StatusUnauthorized
	case "AUTH004", "DB001":
		return http.StatusConflict
	case "XFR001", "RATE001":
		return http.StatusTooManyRequests
	case "SRC002":
		return http.StatusServiceUnavailable
	case "XFR003":
		return http.StatusGatewayTimeout
	case "AUTH003", "SRC003", "XFR002":
		return http.StatusBadRequest
	}
	if strings.HasPrefix(code, "FILE") || strings.HasPrefix(code, "CFG") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

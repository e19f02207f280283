package web

// errors.go turns service errors into responses. The technical error is
// logged with the request id; the client gets the mapped user message,
// as JSON for API and HTMX-less callers or as an HTML fragment otherwise.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/colarrange/internal/core"
	"github.com/JonMunkholm/colarrange/internal/csv"
	"github.com/JonMunkholm/colarrange/internal/web/templates"
)

// Request validation failures raised by the handlers themselves.
var (
	errInvalidBody       = errors.New("invalid request body")
	errInvalidIndex      = errors.New("invalid column index")
	errUnsupportedFormat = errors.New("unsupported export format")
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a service or handler error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrWorkspaceNotFound),
		errors.Is(err, core.ErrArrangementNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrStructureMismatch):
		return http.StatusConflict
	case errors.Is(err, csv.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyUploads),
		errors.Is(err, core.ErrTooManyWorkspaces):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrBlankName),
		errors.Is(err, core.ErrNoCSVLoaded),
		errors.Is(err, core.ErrIndexOutOfRange),
		errors.Is(err, core.ErrNothingToExport),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, errInvalidBody),
		errors.Is(err, errInvalidIndex),
		errors.Is(err, errUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail responds with the status statusFor picks.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.respondError(w, r, err, statusFor(err))
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if wantsJSON(r) {
		writeJSON(w, statusCode, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w); err != nil {
		slog.Error("render error alert", "error", err)
	}
}

// wantsJSON reports whether the client should get a JSON error. API
// routes always do.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

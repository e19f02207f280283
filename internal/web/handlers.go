package web

import (
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/colarrange/internal/core"
	"github.com/JonMunkholm/colarrange/internal/web/templates"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	arrs, err := s.service.ListArrangements(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	params := templates.IndexParams{
		Arrangements: arrs,
		MaxFileSize:  s.cfg.Upload.MaxFileSize,
	}
	if err := templates.Index(params).Render(r.Context(), w); err != nil {
		slog.Error("render index", "error", err)
	}
}

// HealthResponse reports liveness plus registry and parser load.
type HealthResponse struct {
	Status     string                  `json:"status"`
	Workspaces int                     `json:"workspaces"`
	Parses     core.ParseLimiterStatus `json:"parses"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Workspaces: s.service.WorkspaceCount(),
		Parses:     s.service.Limiter().Status(),
	})
}

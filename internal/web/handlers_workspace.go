package web

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/colarrange/internal/core"
	"github.com/JonMunkholm/colarrange/internal/export"
	"github.com/JonMunkholm/colarrange/internal/logging"
)

// handleOpenWorkspace parses an uploaded file into a new workspace and
// returns it with its recommended arrangements.
func (s *Server) handleOpenWorkspace(w http.ResponseWriter, r *http.Request) {
	// Headroom for the multipart envelope; the service enforces the file limit.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+1<<20)

	name, body, err := readUpload(r, s.cfg.Upload.MaxFileSize)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer body.Close()

	ws, err := s.service.OpenWorkspace(WithRequestMetadata(r.Context(), r), name, body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newWorkspaceView(ws))
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := s.service.GetWorkspace(chi.URLParam(r, "workspaceID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWorkspaceView(ws))
}

func (s *Server) handleCloseWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CloseWorkspace(chi.URLParam(r, "workspaceID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondWorkspace writes the outcome of a column mutation.
func (s *Server) respondWorkspace(w http.ResponseWriter, r *http.Request, ws core.Workspace, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWorkspaceView(ws))
}

func (s *Server) handleReorderColumn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From *int `json:"from"`
		To   *int `json:"to"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.From == nil || req.To == nil {
		s.fail(w, r, errInvalidBody)
		return
	}

	ws, err := s.service.ReorderColumn(chi.URLParam(r, "workspaceID"), *req.From, *req.To)
	s.respondWorkspace(w, r, ws, err)
}

func (s *Server) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	ws, err := s.service.AddColumn(chi.URLParam(r, "workspaceID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newWorkspaceView(ws))
}

func (s *Server) handleToggleColumn(w http.ResponseWriter, r *http.Request) {
	i, err := columnIndex(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ws, err := s.service.ToggleColumn(chi.URLParam(r, "workspaceID"), i)
	s.respondWorkspace(w, r, ws, err)
}

func (s *Server) handleRenameColumn(w http.ResponseWriter, r *http.Request) {
	i, err := columnIndex(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req struct {
		Name *string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Name == nil {
		s.fail(w, r, errInvalidBody)
		return
	}

	ws, err := s.service.RenameColumn(chi.URLParam(r, "workspaceID"), i, *req.Name)
	s.respondWorkspace(w, r, ws, err)
}

func (s *Server) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	i, err := columnIndex(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ws, err := s.service.DeleteColumn(chi.URLParam(r, "workspaceID"), i)
	s.respondWorkspace(w, r, ws, err)
}

func (s *Server) handleResetColumns(w http.ResponseWriter, r *http.Request) {
	ws, err := s.service.ResetColumns(chi.URLParam(r, "workspaceID"))
	s.respondWorkspace(w, r, ws, err)
}

func (s *Server) handleApplyArrangement(w http.ResponseWriter, r *http.Request) {
	ws, err := s.service.ApplyToWorkspace(r.Context(),
		chi.URLParam(r, "workspaceID"),
		chi.URLParam(r, "arrangementID"),
	)
	s.respondWorkspace(w, r, ws, err)
}

// handleSaveArrangement stores the workspace's current arrangement under
// the given name.
func (s *Server) handleSaveArrangement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	a, err := s.service.SaveFromWorkspace(r.Context(), chi.URLParam(r, "workspaceID"), req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// handleExportWorkspace downloads the arranged file as CSV (default) or
// XLSX.
func (s *Server) handleExportWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	ws, err := s.service.GetWorkspace(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ws.Model.Empty() {
		s.fail(w, r, core.ErrNoCSVLoaded)
		return
	}

	logger := logging.WithFields(r.Context(), "workspace_id", id)

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		attachment(w, "text/csv; charset=utf-8", core.ExportName(ws.Model.FileName))
		_, err = w.Write([]byte(core.Serialize(ws.Model)))
		if err != nil {
			logger.Error("write csv export", "error", err)
		}

	case "xlsx":
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, ws.Model); err != nil {
			s.fail(w, r, err)
			return
		}
		attachment(w, export.XLSXContentType, export.XLSXName(ws.Model.FileName))
		if _, err := buf.WriteTo(w); err != nil {
			logger.Error("write xlsx export", "error", err)
		}

	default:
		s.fail(w, r, errUnsupportedFormat)
		return
	}

	logger.Info("workspace exported", "file", ws.Model.FileName, "rows", len(ws.Model.Rows))
}

package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/colarrange/internal/core"
	"github.com/JonMunkholm/colarrange/internal/csv"
)

func (s *Server) handleListArrangements(w http.ResponseWriter, r *http.Request) {
	arrs, err := s.service.ListArrangements(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if arrs == nil {
		arrs = []core.Arrangement{}
	}
	writeJSON(w, http.StatusOK, arrs)
}

func (s *Server) handleDeleteArrangement(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteArrangement(r.Context(), chi.URLParam(r, "arrangementID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportArrangements downloads the selected arrangements (?ids=a,b)
// as an export document. No ids selects everything.
func (s *Server) handleExportArrangements(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	doc, fileName, err := s.service.ExportArrangements(r.Context(), ids)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	attachment(w, "application/json", fileName)
	_, _ = w.Write(data)
}

// ImportResponse reports an arrangement import.
type ImportResponse struct {
	Status   core.ImportStatus `json:"status"`
	Imported int               `json:"imported"`
	Message  string            `json:"message"`
}

// handleImportArrangements merges an uploaded export document into the
// stored arrangements. An unusable document is a 400 carrying the same
// body shape as a success.
func (s *Server) handleImportArrangements(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+1<<20)

	_, body, err := readUpload(r, s.cfg.Upload.MaxFileSize)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, s.cfg.Upload.MaxFileSize+1))
	if err != nil {
		s.fail(w, r, fmt.Errorf("error reading file: %w", err))
		return
	}
	if int64(len(data)) > s.cfg.Upload.MaxFileSize {
		s.fail(w, r, csv.ErrFileTooLarge)
		return
	}

	result, err := s.service.ImportArrangements(r.Context(), data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	status := http.StatusOK
	switch result.Status {
	case core.ImportStatusInvalidFormat, core.ImportStatusUnreadable:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, ImportResponse{
		Status:   result.Status,
		Imported: result.Imported,
		Message:  result.Message(),
	})
}

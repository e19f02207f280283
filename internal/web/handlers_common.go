package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/colarrange/internal/core"
	"github.com/JonMunkholm/colarrange/internal/csv"
)

// PreviewRows is the number of arranged data rows included in a workspace
// view.
const PreviewRows = 5

// maxJSONBody bounds small JSON request bodies.
const maxJSONBody = 1 << 20

// WorkspaceView is the JSON shape of a workspace.
type WorkspaceView struct {
	ID        string             `json:"id"`
	FileName  string             `json:"fileName"`
	Columns   []core.Column      `json:"columns"`
	RowCount  int                `json:"rowCount"`
	Preview   [][]string         `json:"preview"`
	Matches   []core.MatchResult `json:"matches"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func newWorkspaceView(ws core.Workspace) WorkspaceView {
	v := WorkspaceView{
		ID:        ws.ID,
		FileName:  ws.Model.FileName,
		Columns:   ws.Model.Columns,
		RowCount:  len(ws.Model.Rows),
		Preview:   [][]string{},
		Matches:   ws.Matches,
		UpdatedAt: ws.UpdatedAt,
	}
	if v.Columns == nil {
		v.Columns = []core.Column{}
	}
	if v.Matches == nil {
		v.Matches = []core.MatchResult{}
	}
	if !ws.Model.Empty() {
		records := core.Records(ws.Model)[1:]
		v.Preview = records[:min(len(records), PreviewRows)]
	}
	return v
}

// decodeJSON reads a small JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// columnIndex parses the {index} URL parameter.
func columnIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidIndex, raw)
	}
	return i, nil
}

// readUpload returns the multipart "file" part, or the raw body when the
// request is not multipart. A missing or empty upload is core.ErrNoFile.
func readUpload(r *http.Request, maxSize int64) (name string, body io.ReadCloser, err error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if r.ContentLength == 0 {
			return "", nil, core.ErrNoFile
		}
		return "", r.Body, nil
	}

	if err := r.ParseMultipartForm(min(maxSize, 32<<20)); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, fmt.Errorf("%w: %v", csv.ErrFileTooLarge, err)
		}
		return "", nil, fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, core.ErrNoFile
	}
	return header.Filename, file, nil
}

// attachment sets the download headers for a file response.
func attachment(w http.ResponseWriter, contentType, fileName string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
}

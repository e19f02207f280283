package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/colarrange/internal/csv"
)

// Workspace is one uploaded file and its working column arrangement.
// Matches holds the recommendations computed when the file was opened.
type Workspace struct {
	ID        string        `json:"id"`
	Model     Model         `json:"model"`
	Matches   []MatchResult `json:"matches"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// OpenWorkspace reads and parses a file body into a new workspace and
// ranks the stored arrangements against it. An empty body is not an error;
// it yields a workspace with no columns.
func (s *Service) OpenWorkspace(ctx context.Context, fileName string, r io.Reader) (Workspace, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return Workspace{}, err
	}
	defer s.limiter.Release()

	start := s.now()
	text, err := csv.ReadText(r, s.cfg.MaxFileSize)
	if err != nil {
		return Workspace{}, fmt.Errorf("read %s: %w", fileName, err)
	}
	m := ParseModel(fileName, text)

	var matches []MatchResult
	if !m.Empty() {
		matches, err = s.MatchModel(ctx, m)
		if err != nil {
			return Workspace{}, err
		}
	}

	now := s.now()
	ws := &Workspace{
		ID:        s.newID(),
		Model:     m,
		Matches:   matches,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	if s.cfg.MaxWorkspaces > 0 && len(s.workspaces) >= s.cfg.MaxWorkspaces {
		s.mu.Unlock()
		return Workspace{}, ErrTooManyWorkspaces
	}
	s.workspaces[ws.ID] = ws
	s.mu.Unlock()

	slog.Info("workspace opened",
		"workspace_id", ws.ID,
		"file", fileName,
		"columns", len(m.Columns),
		"rows", len(m.Rows),
		"matches", len(matches),
		"client_ip", GetIPAddressFromContext(ctx),
		"user_agent", GetUserAgentFromContext(ctx),
		"duration_ms", now.Sub(start).Milliseconds(),
	)
	return *ws, nil
}

// GetWorkspace returns a snapshot of the workspace with the given id.
func (s *Service) GetWorkspace(id string) (Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.workspaces[id]
	if !ok {
		return Workspace{}, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	return *ws, nil
}

// CloseWorkspace discards a workspace.
func (s *Service) CloseWorkspace(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workspaces[id]; !ok {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	delete(s.workspaces, id)
	return nil
}

// WorkspaceCount returns the number of open workspaces.
func (s *Service) WorkspaceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}

// UpdateWorkspace replaces the workspace model with fn's result. fn runs
// under the registry lock; when it fails the workspace is left untouched.
func (s *Service) UpdateWorkspace(id string, fn func(Model) (Model, error)) (Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.workspaces[id]
	if !ok {
		return Workspace{}, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}

	m, err := fn(ws.Model)
	if err != nil {
		return *ws, err
	}
	ws.Model = m
	ws.UpdatedAt = s.now()
	return *ws, nil
}

// ReorderColumn moves a workspace column from one position to another.
func (s *Service) ReorderColumn(id string, from, to int) (Workspace, error) {
	return s.UpdateWorkspace(id, func(m Model) (Model, error) {
		return m.Reorder(from, to)
	})
}

// ToggleColumn flips the exclusion of a workspace column.
func (s *Service) ToggleColumn(id string, i int) (Workspace, error) {
	return s.UpdateWorkspace(id, func(m Model) (Model, error) {
		return m.ToggleExcluded(i)
	})
}

// AddColumn appends a custom column to a workspace.
func (s *Service) AddColumn(id string) (Workspace, error) {
	return s.UpdateWorkspace(id, func(m Model) (Model, error) {
		if m.Empty() {
			return m, ErrNoCSVLoaded
		}
		return m.AddCustomColumn(s.newID), nil
	})
}

// DeleteColumn removes a workspace column.
func (s *Service) DeleteColumn(id string, i int) (Workspace, error) {
	return s.UpdateWorkspace(id, func(m Model) (Model, error) {
		return m.DeleteColumn(i)
	})
}

// RenameColumn renames a workspace column.
func (s *Service) RenameColumn(id string, i int, name string) (Workspace, error) {
	return s.UpdateWorkspace(id, func(m Model) (Model, error) {
		return m.RenameColumn(i, name)
	})
}

// ResetColumns restores the uploaded column order of a workspace.
func (s *Service) ResetColumns(id string) (Workspace, error) {
	return s.UpdateWorkspace(id, func(m Model) (Model, error) {
		return m.Reset(), nil
	})
}

// ApplyToWorkspace loads a stored arrangement into a workspace.
func (s *Service) ApplyToWorkspace(ctx context.Context, id, arrangementID string) (Workspace, error) {
	a, err := s.GetArrangement(ctx, arrangementID)
	if err != nil {
		return Workspace{}, err
	}

	ws, err := s.UpdateWorkspace(id, func(m Model) (Model, error) {
		return ApplyArrangement(m, a, s.newID)
	})
	if err != nil {
		return ws, fmt.Errorf("apply arrangement %q: %w", a.Name, err)
	}
	return ws, nil
}

// SaveFromWorkspace stores a workspace's column sequence as a new
// arrangement.
func (s *Service) SaveFromWorkspace(ctx context.Context, id, name string) (Arrangement, error) {
	ws, err := s.GetWorkspace(id)
	if err != nil {
		return Arrangement{}, err
	}
	return s.SaveArrangement(ctx, ws.Model, name)
}

// SweepIdle closes every workspace not touched since before now minus the
// idle timeout. It returns the number closed.
func (s *Service) SweepIdle(now time.Time) int {
	cutoff := now.Add(-s.cfg.IdleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, ws := range s.workspaces {
		if ws.UpdatedAt.Before(cutoff) {
			delete(s.workspaces, id)
			n++
		}
	}
	return n
}

package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ArrangementStore persists the whole arrangement collection. Both calls are
// atomic: SaveAll replaces everything that LoadAll would return.
type ArrangementStore interface {
	LoadAll(ctx context.Context) ([]Arrangement, error)
	SaveAll(ctx context.Context, arrs []Arrangement) error
}

// ServiceConfig tunes the limits a Service enforces. Zero values fall back
// to defaults.
type ServiceConfig struct {
	MaxFileSize   int64         // bytes; 0 disables the limit
	MaxConcurrent int           // parses at once
	MaxWait       time.Duration // wait for a parse slot
	IdleTimeout   time.Duration // workspace expiry
	MaxWorkspaces int           // 0 means unlimited
}

// DefaultIdleTimeout is how long an untouched workspace survives.
const DefaultIdleTimeout = 30 * time.Minute

// Service owns the arrangement collection and the open workspaces. It is
// safe for concurrent use.
type Service struct {
	store   ArrangementStore
	limiter *ParseLimiter
	cfg     ServiceConfig
	newID   func() string
	now     func() time.Time

	// arrMu serialises load-modify-save cycles on the store.
	arrMu sync.Mutex

	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// Option customises a Service.
type Option func(*Service)

// WithIDGenerator replaces uuid.NewString for arrangement, workspace and
// custom column IDs.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

// NewService creates a Service backed by store.
func NewService(store ArrangementStore, cfg ServiceConfig, opts ...Option) *Service {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}

	s := &Service{
		store:      store,
		limiter:    NewParseLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		cfg:        cfg,
		newID:      uuid.NewString,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limiter exposes the parse limiter for status reporting and shutdown.
func (s *Service) Limiter() *ParseLimiter {
	return s.limiter
}

// ListArrangements returns every stored arrangement in stored order.
func (s *Service) ListArrangements(ctx context.Context) ([]Arrangement, error) {
	arrs, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load arrangements: %w", err)
	}
	return arrs, nil
}

// GetArrangement returns the stored arrangement with the given id.
func (s *Service) GetArrangement(ctx context.Context, id string) (Arrangement, error) {
	arrs, err := s.ListArrangements(ctx)
	if err != nil {
		return Arrangement{}, err
	}
	i := slices.IndexFunc(arrs, func(a Arrangement) bool { return a.ID == id })
	if i < 0 {
		return Arrangement{}, fmt.Errorf("%w: %s", ErrArrangementNotFound, id)
	}
	return arrs[i], nil
}

// SaveArrangement stores the model's current column sequence as a new
// arrangement named name.
func (s *Service) SaveArrangement(ctx context.Context, m Model, name string) (Arrangement, error) {
	a, err := NewArrangement(m, name, s.newID())
	if err != nil {
		return Arrangement{}, err
	}

	err = s.modifyArrangements(ctx, func(arrs []Arrangement) ([]Arrangement, error) {
		return append(arrs, a), nil
	})
	if err != nil {
		return Arrangement{}, err
	}

	slog.Info("arrangement saved", "id", a.ID, "name", a.Name, "columns", a.ColumnOrder.Len())
	return a, nil
}

// DeleteArrangement removes the arrangement with the given id.
func (s *Service) DeleteArrangement(ctx context.Context, id string) error {
	err := s.modifyArrangements(ctx, func(arrs []Arrangement) ([]Arrangement, error) {
		i := slices.IndexFunc(arrs, func(a Arrangement) bool { return a.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrArrangementNotFound, id)
		}
		return slices.Delete(slices.Clone(arrs), i, i+1), nil
	})
	if err != nil {
		return err
	}

	slog.Info("arrangement deleted", "id", id)
	return nil
}

// ExportArrangements builds an export document for the selected ids (all
// arrangements when ids is empty) along with its download file name.
func (s *Service) ExportArrangements(ctx context.Context, ids []string) (ExportDocument, string, error) {
	all, err := s.ListArrangements(ctx)
	if err != nil {
		return ExportDocument{}, "", err
	}

	selected, err := SelectArrangements(all, ids)
	if err != nil {
		return ExportDocument{}, "", err
	}
	return NewExportDocument(selected, s.now()), ExportFilename(selected), nil
}

// ImportArrangements merges an export document into the stored collection.
// Problems with the document are reported through the result status; only
// storage failures are returned as errors.
func (s *Service) ImportArrangements(ctx context.Context, data []byte) (ImportResult, error) {
	var result ImportResult
	err := s.modifyArrangements(ctx, func(arrs []Arrangement) ([]Arrangement, error) {
		result = ImportDocument(arrs, data, s.newID)
		if result.Status != ImportStatusImported {
			return nil, nil
		}
		return result.Arrangements, nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	slog.Info("arrangements imported", "status", result.Status, "count", result.Imported)
	return result, nil
}

// MatchModel scores every stored arrangement against the model's columns.
func (s *Service) MatchModel(ctx context.Context, m Model) ([]MatchResult, error) {
	arrs, err := s.ListArrangements(ctx)
	if err != nil {
		return nil, err
	}
	return MatchArrangements(m.Columns, arrs), nil
}

// modifyArrangements runs one load-modify-save cycle. A nil slice from fn
// with a nil error means nothing changed and skips the save.
func (s *Service) modifyArrangements(ctx context.Context, fn func([]Arrangement) ([]Arrangement, error)) error {
	s.arrMu.Lock()
	defer s.arrMu.Unlock()

	arrs, err := s.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load arrangements: %w", err)
	}

	updated, err := fn(arrs)
	if err != nil {
		return err
	}
	if updated == nil {
		return nil
	}

	if err := s.store.SaveAll(ctx, updated); err != nil {
		return fmt.Errorf("save arrangements: %w", err)
	}
	return nil
}

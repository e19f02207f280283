package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/colarrange/internal/config"
	"github.com/JonMunkholm/colarrange/internal/core"
)

func sampleArrangements() []core.Arrangement {
	return []core.Arrangement{
		{ID: "1730000000000", Name: "Legacy", ColumnOrder: core.LegacyOrder(2, 0, 1)},
		{ID: "b6c1", Name: "Current, with comma", ColumnOrder: core.CurrentOrder(
			core.OrderEntry{OriginalIndex: 1, Name: "Age", Excluded: true},
			core.OrderEntry{OriginalIndex: core.CustomColumnIndex, Name: "Notes", IsCustom: true},
		)},
	}
}

// testStoreContract exercises the behaviour every backend must share.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll on empty store: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("empty store returned %d arrangements", len(got))
	}

	want := sampleArrangements()
	if err := s.SaveAll(ctx, want); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	got, err = s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	assertArrangements(t, got, want)

	if err := s.SaveAll(ctx, want[1:]); err != nil {
		t.Fatalf("SaveAll replace: %v", err)
	}
	got, _ = s.LoadAll(ctx)
	assertArrangements(t, got, want[1:])

	if err := s.SaveAll(ctx, nil); err != nil {
		t.Fatalf("SaveAll(nil): %v", err)
	}
	got, _ = s.LoadAll(ctx)
	if len(got) != 0 {
		t.Errorf("after saving nil, got %d arrangements", len(got))
	}
}

func assertArrangements(t *testing.T, got, want []core.Arrangement) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d arrangements, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.ID != w.ID || g.Name != w.Name {
			t.Errorf("[%d] = %q/%q, want %q/%q", i, g.ID, g.Name, w.ID, w.Name)
		}
		if g.ColumnOrder.Format != w.ColumnOrder.Format || g.ColumnOrder.Len() != w.ColumnOrder.Len() {
			t.Errorf("[%d] order = %+v, want %+v", i, g.ColumnOrder, w.ColumnOrder)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestMemoryStore_CopiesOnSave(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	arrs := sampleArrangements()
	if err := s.SaveAll(ctx, arrs); err != nil {
		t.Fatal(err)
	}

	arrs[0].Name = "mutated"
	got, _ := s.LoadAll(ctx)
	if got[0].Name != "Legacy" {
		t.Errorf("store shares caller's slice: %q", got[0].Name)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "csvColumnArrangements")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	testStoreContract(t, s)
}

func TestFileStore_LayoutAndCorruption(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "nested"), "arrs")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := s.SaveAll(context.Background(), sampleArrangements()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "nested", "arrs.json"))
	if err != nil {
		t.Fatalf("read store file: %v", err)
	}
	if !strings.HasPrefix(string(data), `[{"id":"1730000000000","name":"Legacy","columnOrder":[2,0,1]}`) {
		t.Errorf("unexpected file content: %s", data)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "nested"))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}

	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadAll(context.Background()); err == nil {
		t.Error("LoadAll should fail on a corrupt file")
	}
}

func TestFileStore_ReadsNumericIDs(t *testing.T) {
	dir := t.TempDir()
	raw := `[{"id":1730000000000.123,"name":"Old","columnOrder":[1,0]}]`
	if err := os.WriteFile(filepath.Join(dir, "k.json"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	s, _ := NewFileStore(dir, "k")
	got, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1730000000000.123" {
		t.Errorf("got %+v", got)
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "arrangements.db")

	s, err := NewSQLiteStore(ctx, path, "csvColumnArrangements")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	testStoreContract(t, s)

	if err := s.SaveAll(ctx, sampleArrangements()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewSQLiteStore(ctx, path, "csvColumnArrangements")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll after reopen: %v", err)
	}
	assertArrangements(t, got, sampleArrangements())

	other, err := NewSQLiteStore(ctx, path, "otherKey")
	if err == nil {
		defer other.Close()
		if got, _ := other.LoadAll(ctx); len(got) != 0 {
			t.Errorf("keys are not isolated: %d arrangements under otherKey", len(got))
		}
	}
}

func TestPostgresStore(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, config.DatabaseConfig{URL: dbURL, MaxConns: 2, MinConns: 0}, "colarrange_test")
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	defer s.Close()

	if _, err := s.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, "colarrange_test"); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	testStoreContract(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		backend string
		want    string
	}{
		{config.BackendMemory, "*database.MemoryStore"},
		{config.BackendFile, "*database.FileStore"},
		{config.BackendSQLite, "*database.SQLiteStore"},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := &config.Config{Storage: config.StorageConfig{
				Backend:    tt.backend,
				Key:        "k",
				Dir:        dir,
				SQLitePath: filepath.Join(dir, "open.db"),
			}}
			s, err := Open(ctx, cfg)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()
			if got := fmt.Sprintf("%T", s); got != tt.want {
				t.Errorf("Open returned %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := Open(ctx, &config.Config{Storage: config.StorageConfig{Backend: "redis"}}); err == nil {
		t.Error("Open should reject an unknown backend")
	}
}

// Tests for the SQLite local store.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func attachTemp(t *testing.T, dir string) *Backend {
	t.Helper()
	b := NewBackend()
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	return b
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := attachTemp(t, tmpDir)
	defer b.Detach()

	if _, err := os.Stat(filepath.Join(tmpDir, DatabaseFile)); os.IsNotExist(err) {
		t.Errorf("%s not created", DatabaseFile)
	}

	err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: tmpDir})
	if err != types.ErrAlreadyAttached {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}
}

func TestBackend_AttachRejectsInvalidConfig(t *testing.T) {
	b := NewBackend()
	if err := b.Attach(types.Config{DataDir: t.TempDir()}); err != types.ErrBackendEmpty {
		t.Errorf("expected ErrBackendEmpty, got %v", err)
	}
}

func TestBackend_Detach(t *testing.T) {
	b := attachTemp(t, t.TempDir())

	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}
	if err := b.Detach(); err != nil {
		t.Errorf("second Detach should not error, got %v", err)
	}

	ctx := context.Background()
	if _, err := b.Load(ctx); err != types.ErrStoreDetached {
		t.Errorf("Load: expected ErrStoreDetached, got %v", err)
	}
	if err := b.Save(ctx, nil); err != types.ErrStoreDetached {
		t.Errorf("Save: expected ErrStoreDetached, got %v", err)
	}
}

func TestBackend_LoadEmpty(t *testing.T) {
	b := attachTemp(t, t.TempDir())
	defer b.Detach()

	books, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if books == nil || len(books) != 0 {
		t.Errorf("expected empty non-nil collection, got %#v", books)
	}
}

func TestBackend_SaveSurvivesReattach(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()
	year := 1965

	want := []types.Book{
		{ID: "b", Title: "Second", Author: "A", Publisher: "P", Pages: 10},
		{ID: "a", Title: "First", Author: "A", Publisher: "P", Pages: 20, PublicationYear: &year, ISBN: "0441013597"},
	}

	b := attachTemp(t, tmpDir)
	if err := b.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	b2 := attachTemp(t, tmpDir)
	defer b2.Detach()

	got, err := b2.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d books, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Title != want[i].Title || got[i].Pages != want[i].Pages {
			t.Errorf("book %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
	if got[1].PublicationYear == nil || *got[1].PublicationYear != 1965 {
		t.Errorf("publication year not preserved: %v", got[1].PublicationYear)
	}
	if got[1].ISBN != "0441013597" {
		t.Errorf("isbn not preserved: %q", got[1].ISBN)
	}
}

func TestBackend_SaveReplacesCollection(t *testing.T) {
	ctx := context.Background()
	b := attachTemp(t, t.TempDir())
	defer b.Detach()

	if err := b.Save(ctx, []types.Book{{ID: "1"}, {ID: "2"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := b.Save(ctx, []types.Book{{ID: "3"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("expected only book 3, got %+v", got)
	}
}

func TestBackend_CorruptValueDegradesToEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	b := attachTemp(t, tmpDir)
	defer b.Detach()

	db, err := sql.Open("sqlite", filepath.Join(tmpDir, DatabaseFile))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"not json", "{{{", 0},
		{"object instead of array", `{"id":"1"}`, 0},
		{"malformed elements skipped", `[{"id":"1"}, 42, null, "x", {"id":"2"}]`, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.Exec(upsertValueSQL, types.CollectionKey, tt.value, "now"); err != nil {
				t.Fatalf("seed: %v", err)
			}
			got, err := b.Load(ctx)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d books, got %d", tt.want, len(got))
			}
		})
	}
}

func TestBackend_WithKeyIsolatesCollections(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	a := NewBackend(WithKey("a"))
	if err := a.Attach(types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if err := a.Save(ctx, []types.Book{{ID: "only-a"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	a.Detach()

	b := attachTemp(t, tmpDir)
	defer b.Detach()
	got, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("default key should be empty, got %+v", got)
	}
}

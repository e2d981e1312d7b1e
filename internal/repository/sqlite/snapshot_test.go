package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sakif/civic-sync/internal/apperror"
)

// newTestDB opens a fresh in-memory database and closes it when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:) error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadSnapshot_Missing(t *testing.T) {
	db := newTestDB(t)

	_, err := db.LoadSnapshot(context.Background(), "ticket-storage")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSaveSnapshot_ReplacesPrevious(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.SaveSnapshot(ctx, "ticket-storage", []byte(`[1]`)); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := db.SaveSnapshot(ctx, "ticket-storage", []byte(`[1,2]`)); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, err := db.LoadSnapshot(ctx, "ticket-storage")
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if string(got) != `[1,2]` {
		t.Errorf("LoadSnapshot() = %s, want [1,2]", got)
	}
}

func TestSnapshot_KeysAreIndependent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	db.SaveSnapshot(ctx, "a", []byte("A"))
	db.SaveSnapshot(ctx, "b", []byte("B"))

	got, _ := db.LoadSnapshot(ctx, "a")
	if string(got) != "A" {
		t.Errorf("LoadSnapshot(a) = %s, want A", got)
	}
}

// TestSnapshot_SurvivesReopen checks durability across a close/open cycle,
// which is what a process restart looks like to the ticket store.
func TestSnapshot_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "civic.db")
	ctx := context.Background()

	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := db.SaveSnapshot(ctx, "ticket-storage", []byte(`{"x":1}`)); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	db.Close()

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.LoadSnapshot(ctx, "ticket-storage")
	if err != nil {
		t.Fatalf("LoadSnapshot() after reopen error = %v", err)
	}
	if string(got) != `{"x":1}` {
		t.Errorf("LoadSnapshot() = %s, want {\"x\":1}", got)
	}
}

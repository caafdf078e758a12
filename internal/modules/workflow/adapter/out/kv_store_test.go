package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	workflowout "segdesk/internal/modules/workflow/adapter/out"
	portout "segdesk/internal/modules/workflow/port/out"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

func exerciseKV(t *testing.T, store portout.KVStore) {
	t.Helper()
	ctx := context.Background()
	if _, found, err := store.Get(ctx, "current_chunk"); err != nil || found {
		t.Fatalf("expected missing key, got found=%v err=%v", found, err)
	}
	if err := store.Set(ctx, "current_chunk", "101"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "current_chunk", "102"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, found, err := store.Get(ctx, "current_chunk"); err != nil || !found || v != "102" {
		t.Fatalf("expected 102, got %q found=%v err=%v", v, found, err)
	}
	if err := store.Remove(ctx, "current_chunk"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(ctx, "current_chunk"); err != nil {
		t.Fatalf("remove twice: %v", err)
	}
	if _, found, _ := store.Get(ctx, "current_chunk"); found {
		t.Fatalf("expected key to be gone")
	}
}

func TestSQLiteKVStore(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state", "segdesk.db")
	store, err := workflowout.NewSQLiteKVStore(path, fixedClock{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	exerciseKV(t, store)

	if err := store.Set(context.Background(), "current_chunk", "7"); err != nil {
		t.Fatalf("set: %v", err)
	}
	reopened, err := workflowout.NewSQLiteKVStore(path, fixedClock{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if v, found, err := reopened.Get(context.Background(), "current_chunk"); err != nil || !found || v != "7" {
		t.Fatalf("value did not survive reopen: %q %v %v", v, found, err)
	}
}

func TestFileKVStore(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state", "anchor.json")
	exerciseKV(t, workflowout.NewFileKVStore(path))
}

func TestFileKVStoreReportsCorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "anchor.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := workflowout.NewFileKVStore(path).Get(context.Background(), "current_chunk"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestMemoryKVStore(t *testing.T) {
	t.Parallel()
	exerciseKV(t, workflowout.NewMemoryKVStore())
}

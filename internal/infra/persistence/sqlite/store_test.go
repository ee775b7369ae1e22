package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"slidedeck/pkg/domain"
)

func sampleRecords() []domain.SlideRecord {
	return []domain.SlideRecord{
		{Ordinal: "01", Slug: "title", Title: "Title", ContentRef: "slides/01_title.html", Section: "Title", Active: true},
		{Ordinal: "02", Slug: "agenda", Title: "Agenda", ContentRef: "slides/02_agenda.html", Section: "Agenda", Active: false},
	}
}

func TestSQLiteStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "slides.db")
	store, err := NewStore(ctx, path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if err := store.Replace(ctx, sampleRecords()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	reloaded, err := NewStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	got, err := reloaded.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	domain.SortRecords(got)
	if diff := cmp.Diff(sampleRecords(), got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	if reloaded.Path() != path {
		t.Fatalf("unexpected path %s", reloaded.Path())
	}
}

func TestSQLiteStoreReplaceIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, filepath.Join(t.TempDir(), "slides.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Replace(ctx, sampleRecords()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	dup := []domain.SlideRecord{
		{Ordinal: "01", Slug: "a", Title: "A", ContentRef: "a.html", Section: "General", Active: true},
		{Ordinal: "02", Slug: "a", Title: "B", ContentRef: "b.html", Section: "General", Active: true},
	}
	if err := store.Replace(ctx, dup); err == nil {
		t.Fatalf("expected unique constraint failure")
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	domain.SortRecords(got)
	if diff := cmp.Diff(sampleRecords(), got); diff != "" {
		t.Fatalf("failed replace changed rows (-want +got):\n%s", diff)
	}
}

func TestSQLiteStoreAppliesDDL(t *testing.T) {
	store, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "slides.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	var name string
	if err := store.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", "slides").Scan(&name); err != nil {
		t.Fatalf("lookup slides table: %v", err)
	}
	if name != "slides" {
		t.Fatalf("expected slides table, got %s", name)
	}
}

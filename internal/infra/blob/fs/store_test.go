package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"slidedeck/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStore_PutGetHeadListDelete(t *testing.T) { //nolint:cyclop
	ctx := context.Background()
	store := newTempStore(t)
	info, err := store.Put(ctx, "slides/01_title.html", bytes.NewReader([]byte("<html></html>")), core.PutOptions{ContentType: "text/html", Metadata: map[string]string{"k": "v"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "slides/01_title.html" || info.Size != 13 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "slides/01_title.html", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate failure")
	}
	h, err := store.Head(ctx, "slides/01_title.html")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	g, rc, err := store.Get(ctx, "slides/01_title.html")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != "<html></html>" || g.ETag != h.ETag || g.ContentType != "text/html" {
		t.Fatalf("unexpected get artifacts %+v", g)
	}
	list, err := store.List(ctx, "slides/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "slides/01_title.html" {
		t.Fatalf("unexpected list %+v", list)
	}
	ok, err := store.Delete(ctx, "slides/01_title.html")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "slides/01_title.html")
	if err != nil || ok {
		t.Fatalf("second delete should be false")
	}
}

func TestStore_MissingKeysMatchErrNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Head(ctx, "nope.html"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head: expected ErrNotFound, got %v", err)
	}
	if _, _, err := store.Get(ctx, "nope.html"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if err := os.MkdirAll(filepath.Join(store.Root(), "dir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := store.Head(ctx, "dir"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("directory keys are not blobs, got %v", err)
	}
	exists, err := core.Exists(ctx, store, "nope.html")
	if err != nil || exists {
		t.Fatalf("Exists = %v, %v", exists, err)
	}
}

func TestStore_HandAuthoredFilesWithoutSidecar(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	path := filepath.Join(store.Root(), "slides", "slide_01_title.html")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("<body>hi</body>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	info, b, err := core.ReadAll(ctx, store, "slides/slide_01_title.html")
	if err != nil {
		t.Fatalf("read hand-authored file: %v", err)
	}
	if string(b) != "<body>hi</body>" || info.Size != int64(len(b)) {
		t.Fatalf("unexpected contents %q info=%+v", b, info)
	}
	list, err := store.List(ctx, "")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %+v", err, list)
	}
}

func TestStore_PathTraversal(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"../escape.txt", "/abs.txt", "x.meta", ""} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

type errorReader struct{}

func (errorReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestStore_PutCopyErrorLeavesNoBlob(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "bad.bin", errorReader{}, core.PutOptions{}); err == nil {
		t.Fatalf("expected copy error")
	}
	if exists, _ := core.Exists(ctx, store, "bad.bin"); exists {
		t.Fatalf("failed put must not leave a blob behind")
	}
	entries, err := os.ReadDir(store.Root())
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), tmpPrefix) {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestStore_ListPrefixAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for i := 2; i >= 0; i-- {
		k := "folder/f" + strconv.Itoa(i) + ".txt"
		if _, err := store.Put(ctx, k, bytes.NewReader([]byte("data")), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	if _, err := store.Put(ctx, "other/x.txt", bytes.NewReader([]byte("x")), core.PutOptions{}); err != nil {
		t.Fatalf("put other: %v", err)
	}
	list, err := store.List(ctx, "folder/")
	if err != nil || len(list) != 3 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Key > list[i].Key {
			t.Fatalf("expected sorted order: %+v", list)
		}
	}
}

func TestStore_ListMetaCorrupt(t *testing.T) {
	store := newTempStore(t)
	data := filepath.Join(store.Root(), "bad.txt")
	if err := os.WriteFile(data, []byte("data"), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	if err := os.WriteFile(data+metaSuffix, []byte("{"), 0o644); err != nil {
		t.Fatalf("write meta: %v", err)
	}
	if _, err := store.List(context.Background(), ""); err == nil {
		t.Fatalf("expected list error on corrupt meta")
	}
}

func TestStore_PresignReturnsFileURL(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	url, err := store.PresignURL(ctx, "gen/index.html", core.SignedURLOptions{Method: "get"})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(url, "file://") || !strings.HasSuffix(url, "/gen/index.html") {
		t.Fatalf("unexpected url %s", url)
	}
	if _, err := store.PresignURL(ctx, "gen/index.html", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected unsupported for PUT, got %v", err)
	}
}

func TestOverwriteReplacesContent(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := core.Overwrite(ctx, store, "CURRENT", []byte("gen-1"), core.PutOptions{}); err != nil {
		t.Fatalf("first overwrite: %v", err)
	}
	if _, err := core.Overwrite(ctx, store, "CURRENT", []byte("gen-2"), core.PutOptions{}); err != nil {
		t.Fatalf("second overwrite: %v", err)
	}
	_, b, err := core.ReadAll(ctx, store, "CURRENT")
	if err != nil || string(b) != "gen-2" {
		t.Fatalf("read: %q %v", b, err)
	}
}

func TestReadMetaRejectsCorruptSidecar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.meta")
	if err := os.WriteFile(path, []byte("not-json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := readMeta(path); err == nil {
		t.Fatalf("expected readMeta error for invalid json")
	}
}

func TestNewRejectsFileRoot(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "afile")
	if err := os.WriteFile(filePath, []byte("x"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := New(filePath); err == nil {
		t.Fatalf("expected error when root is file")
	}
}

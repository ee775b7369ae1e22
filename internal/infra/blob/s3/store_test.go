package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"slidedeck/internal/blob/core"
)

func TestStore_MockedBasicFlow(t *testing.T) {
	store := NewMock("")
	ctx := context.Background()
	info, err := store.Put(ctx, "slides/01_title.html", bytes.NewReader([]byte("hello")), core.PutOptions{ContentType: "text/html", Metadata: map[string]string{"origin": "seed"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "slides/01_title.html" || info.ContentType != "text/html" || info.Size != 5 {
		t.Fatalf("unexpected info %#v", info)
	}
	if info.Metadata["origin"] != "seed" {
		t.Fatalf("metadata not round tripped: %#v", info.Metadata)
	}
	if _, err := store.Put(ctx, "slides/01_title.html", bytes.NewReader([]byte("ignored")), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put error")
	}
	_, data, err := core.ReadAll(ctx, store, "slides/01_title.html")
	if err != nil || string(data) != "hello" {
		t.Fatalf("get mismatch: %q %v", data, err)
	}
	list, err := store.List(ctx, "slides/")
	if err != nil || len(list) != 1 || list[0].Key != "slides/01_title.html" {
		t.Fatalf("list: %v %+v", err, list)
	}
	if url, err := store.PresignURL(ctx, "slides/01_title.html", core.SignedURLOptions{Expiry: 30 * time.Second}); err != nil || !strings.Contains(url, "01_title.html") {
		t.Fatalf("presign: %v %s", err, url)
	}
	if ok, err := store.Delete(ctx, "slides/01_title.html"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "slides/01_title.html"); err != nil || ok {
		t.Fatalf("second delete should report absent: %v %v", ok, err)
	}
}

func TestStore_MissingKeysMatchErrNotFound(t *testing.T) {
	store := NewMock("")
	ctx := context.Background()
	if _, err := store.Head(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected head ErrNotFound, got %v", err)
	}
	if _, _, err := store.Get(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected get ErrNotFound, got %v", err)
	}
	if _, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected presign unsupported error")
	}
	if _, err := store.Put(ctx, " ", bytes.NewReader(nil), core.PutOptions{}); err == nil {
		t.Fatalf("expected empty key error")
	}
}

func TestStore_ListPaginatesAndStripsPrefix(t *testing.T) {
	rt := &mockRoundTripper{state: make(map[string]mockObj), pageSize: 1}
	store := newMockWithTransport(rt, "decks/q3")
	ctx := context.Background()
	for _, k := range []string{"b.html", "a.html", "c.html"} {
		if _, err := store.Put(ctx, k, bytes.NewReader([]byte(k)), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	if _, ok := rt.state["decks/q3/a.html"]; !ok {
		t.Fatalf("expected object stored under prefix, have %v", rt.state)
	}
	list, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var keys []string
	for _, inf := range list {
		keys = append(keys, inf.Key)
	}
	if strings.Join(keys, ",") != "a.html,b.html,c.html" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if empty, err := store.List(ctx, "zzz"); err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list: %v %+v", err, empty)
	}
}

func TestStore_New(t *testing.T) {
	s, err := New(context.Background(), Config{Bucket: "bkt", Region: "us-east-1", Endpoint: "https://mock.s3.local", PathStyle: true, AccessKeyID: "AKIA", SecretAccessKey: "SECRET", Prefix: "x"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Driver() != core.DriverS3 || s.prefix != "x/" {
		t.Fatalf("unexpected store %+v", s)
	}
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}

func TestStore_FromHeadNilBranches(t *testing.T) {
	store := NewMock("")
	etag := "\"etagval\""
	info := store.fromHead("k", 10, nil, &etag, map[string]string{"x": "y"}, nil)
	if info.ETag != "etagval" || info.ContentType != "" || info.Key != "k" || info.Size != 10 || info.LastModified.IsZero() {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestMockRoundTripperUnsupported(t *testing.T) {
	rt := &mockRoundTripper{state: make(map[string]mockObj)}
	req, _ := http.NewRequest(http.MethodPatch, "https://mock.s3.local/bucket/key", nil)
	resp, _ := rt.RoundTrip(req)
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", resp.StatusCode)
	}
}

func TestDecodeChunked(t *testing.T) {
	if _, ok := decodeChunked([]byte("not-chunked")); ok {
		t.Fatalf("plain body should not decode")
	}
	if _, ok := decodeChunked([]byte("5\r\nabc\r\n0\r\n")); ok {
		t.Fatalf("size mismatch should fail")
	}
	if b, ok := decodeChunked([]byte("5;chunk-signature=abc\r\nhello\r\n0\r\n")); !ok || string(b) != "hello" {
		t.Fatalf("expected decode hello")
	}
}

package edgar

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(ClientConfig{
		UserAgent: "ChronofundTest/1.0 test@example.com",
		CacheDir:  t.TempDir(),
		RateLimit: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewClientRejectsBadUserAgent(t *testing.T) {
	tests := []struct {
		name, ua string
		ok       bool
	}{
		{"valid", "Research/1.0 me@example.com", true},
		{"empty", "", false},
		{"no space", "Research/1.0", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewClient(ClientConfig{UserAgent: tc.ua, CacheDir: t.TempDir()})
			if tc.ok != (err == nil) {
				t.Fatalf("NewClient(ua=%q) error = %v, want ok=%v", tc.ua, err, tc.ok)
			}
			if c != nil {
				c.Close()
			}
		})
	}
}

func TestGetJSONIntoSendsHeaders(t *testing.T) {
	var gotUA, gotEncoding string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotEncoding = r.Header.Get("Accept-Encoding")
		w.Write([]byte(`{"name":"Apple Inc."}`))
	}))
	defer srv.Close()

	c := newTestClient(t)
	var out struct {
		Name string `json:"name"`
	}
	if err := c.GetJSONInto(context.Background(), srv.URL, nil, &out); err != nil {
		t.Fatal(err)
	}
	if out.Name != "Apple Inc." {
		t.Errorf("decoded name = %q", out.Name)
	}
	if gotUA != "ChronofundTest/1.0 test@example.com" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotEncoding == "" {
		t.Error("Accept-Encoding header not sent")
	}
}

func TestGetRawDecompressesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("compressed payload"))
		gz.Close()
	}))
	defer srv.Close()

	c := newTestClient(t)
	body, err := c.GetRaw(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "compressed payload" {
		t.Errorf("body = %q", body)
	}
}

func TestFetchServesSecondRequestFromCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"ok":true}`))
	}))

	c := newTestClient(t)
	ctx := context.Background()
	if _, err := c.GetRaw(ctx, srv.URL); err != nil {
		t.Fatal(err)
	}
	// Kill the server; a second fetch can only succeed from cache.
	url := srv.URL
	srv.Close()

	body, err := c.GetRaw(ctx, url)
	if err != nil {
		t.Fatalf("cached fetch failed: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("cached body = %q", body)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestNonRetryable4xxFailsImmediately(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t)
	_, err := c.GetRaw(context.Background(), srv.URL)
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want HTTPStatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", statusErr.StatusCode)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("404 retried: server hit %d times, want 1", n)
	}
}

package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"captionforge/internal/config"
	"captionforge/internal/services"
)

func TestDownloadWritesRemoteSource(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		if r.URL.Path != "/videos/clip.MOV" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("video-bytes"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Fetch.UserAgent = "captionforge-test"
	client := New(&cfg)

	dir := filepath.Join(t.TempDir(), "job")
	path, err := client.Download(context.Background(), server.URL+"/videos/clip.MOV?sig=secret", dir)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if filepath.Base(path) != "source.mov" {
		t.Fatalf("unexpected staged name %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Fatalf("unexpected content %q", data)
	}
	if agent != "captionforge-test" {
		t.Fatalf("expected user agent to be sent, got %q", agent)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the staged file, got %d entries", len(entries))
	}
}

func TestDownloadHTTPErrorIsRetrieval(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.Client(), "")
	_, err := client.Download(context.Background(), server.URL+"/a.mp4?token=abc", t.TempDir())
	if !errors.Is(err, services.ErrRetrieval) {
		t.Fatalf("expected retrieval error, got %v", err)
	}
	if !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status in error, got %v", err)
	}
	if strings.Contains(err.Error(), "token=abc") {
		t.Fatalf("expected query string to be redacted, got %v", err)
	}
}

func TestDownloadLocalPathUsedInPlace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.mp4")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	client := NewClient(nil, "")

	got, err := client.Download(context.Background(), src, filepath.Join(dir, "staging"))
	if err != nil || got != src {
		t.Fatalf("expected %q, got %q (%v)", src, got, err)
	}
	got, err = client.Download(context.Background(), "file://"+src, filepath.Join(dir, "staging"))
	if err != nil || got != src {
		t.Fatalf("expected file url to resolve to %q, got %q (%v)", src, got, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "staging")); !os.IsNotExist(err) {
		t.Fatalf("local sources must not create staging output")
	}

	_, err = client.Download(context.Background(), filepath.Join(dir, "missing.mp4"), dir)
	if !errors.Is(err, services.ErrRetrieval) {
		t.Fatalf("expected retrieval error for missing source, got %v", err)
	}
}

func TestFetchText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("1\n00:00:01,000 --> 00:00:02,000\nhello\n"))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "")
	text, err := client.FetchText(context.Background(), server.URL+"/subs.srt")
	if err != nil {
		t.Fatalf("FetchText returned error: %v", err)
	}
	if !strings.Contains(text, "hello") {
		t.Fatalf("unexpected payload %q", text)
	}

	if _, err := client.FetchText(context.Background(), "/tmp/subs.srt"); !errors.Is(err, services.ErrRetrieval) {
		t.Fatalf("expected retrieval error for local ref, got %v", err)
	}
}

func TestIsRemote(t *testing.T) {
	cases := map[string]bool{
		"http://x/y.srt":  true,
		"HTTPS://x/y.srt": true,
		" https://x":      true,
		"ftp://x":         false,
		"1\n00:00:01,000": false,
		"/tmp/a.mp4":      false,
	}
	for in, want := range cases {
		if got := IsRemote(in); got != want {
			t.Fatalf("IsRemote(%q) = %v, want %v", in, got, want)
		}
	}
}

package captionjob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"captionforge/internal/captions"
	"captionforge/internal/fonts"
	"captionforge/internal/media/ffprobe"
	"captionforge/internal/resultcache"
	"captionforge/internal/services/ffmpeg"
)

const srtPayload = "1\n00:00:01,000 --> 00:00:03,000\na b\n"

type fakeDownloader struct {
	calls atomic.Int32
	err   error
	// hold blocks downloads of a ref until its channel is closed.
	hold map[string]chan struct{}
}

func (f *fakeDownloader) Download(_ context.Context, ref, destDir string) (string, error) {
	f.calls.Add(1)
	if release, ok := f.hold[ref]; ok {
		<-release
	}
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(destDir, "source.mp4")
	if err := os.WriteFile(path, []byte("video:"+ref), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeFetcher struct {
	calls atomic.Int32
	text  string
	err   error
}

func (f *fakeFetcher) FetchText(context.Context, string) (string, error) {
	f.calls.Add(1)
	return f.text, f.err
}

type fakeRenderer struct {
	calls    atomic.Int32
	err      error
	frames   []int64
	mu       sync.Mutex
	requests []ffmpeg.Request
	staged   map[string]string
}

func (f *fakeRenderer) Render(_ context.Context, req ffmpeg.Request, progress ffmpeg.ProgressFunc) error {
	f.calls.Add(1)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.staged = map[string]string{}
	entries, _ := os.ReadDir(filepath.Dir(req.OutputPath))
	for _, entry := range entries {
		data, _ := os.ReadFile(filepath.Join(filepath.Dir(req.OutputPath), entry.Name()))
		f.staged[entry.Name()] = string(data)
	}
	f.mu.Unlock()
	for _, frame := range f.frames {
		if progress != nil {
			progress(frame)
		}
	}
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(req.OutputPath, []byte("rendered"), 0o644)
}

func (f *fakeRenderer) lastRequest(t *testing.T) ffmpeg.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("renderer was not called")
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeRenderer) stagedWithSuffix(t *testing.T, suffix string) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, content := range f.staged {
		if strings.HasSuffix(name, suffix) {
			return content
		}
	}
	t.Fatalf("no staged file with suffix %q in %v", suffix, f.staged)
	return ""
}

type fakeProber struct {
	calls atomic.Int32
	total int64
	err   error
}

func (f *fakeProber) Probe(context.Context, string) (ffprobe.Probe, error) {
	f.calls.Add(1)
	return ffprobe.Probe{TotalFrames: f.total, DurationSeconds: 4, FrameRate: 25}, f.err
}

type fakeUploader struct {
	calls atomic.Int32
	err   error
	mu    sync.Mutex
	paths []string
}

func (f *fakeUploader) Upload(_ context.Context, localPath string) (string, error) {
	f.calls.Add(1)
	if _, err := os.Stat(localPath); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.paths = append(f.paths, localPath)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + filepath.Base(localPath), nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]resultcache.Entry
	getErr  error
	putErr  error
	puts    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]resultcache.Entry{}}
}

func (m *memoryCache) Get(_ context.Context, fp string) (resultcache.Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return resultcache.Entry{}, false, m.getErr
	}
	entry, ok := m.entries[fp]
	return entry, ok, nil
}

func (m *memoryCache) Put(_ context.Context, entry resultcache.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.puts++
	m.entries[entry.Fingerprint] = entry
	return nil
}

func (m *memoryCache) List(context.Context) ([]resultcache.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]resultcache.Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		out = append(out, entry)
	}
	return out, nil
}

func (m *memoryCache) Purge(context.Context, bool) (int, error) { return 0, nil }

func (m *memoryCache) Close() error { return nil }

func (m *memoryCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type recordingReporter struct {
	mu       sync.Mutex
	statuses []Status
	percents []float64
}

func (r *recordingReporter) JobProgress(_ string, status Status, percent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 || r.statuses[len(r.statuses)-1] != status {
		r.statuses = append(r.statuses, status)
	}
	if status == StatusRendering {
		r.percents = append(r.percents, percent)
	}
}

type harness struct {
	orchestrator *Orchestrator
	stagingDir   string
	downloader   *fakeDownloader
	fetcher      *fakeFetcher
	renderer     *fakeRenderer
	prober       *fakeProber
	uploader     *fakeUploader
	cache        *memoryCache
	reporter     *recordingReporter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		stagingDir: filepath.Join(t.TempDir(), "staging"),
		downloader: &fakeDownloader{},
		fetcher:    &fakeFetcher{text: srtPayload},
		renderer:   &fakeRenderer{frames: []int64{0, 50, 40, 100}},
		prober:     &fakeProber{total: 100},
		uploader:   &fakeUploader{},
		cache:      newMemoryCache(),
		reporter:   &recordingReporter{},
	}
	catalog := fonts.NewCatalog("/fonts", map[string]string{
		"Arial":  "/fonts/Arial.ttf",
		"Roboto": "/fonts/Roboto.ttf",
	})
	orch, err := NewOrchestrator(Settings{StagingDir: h.stagingDir, DefaultFont: "Arial"}, Dependencies{
		Fonts:      catalog,
		Cache:      h.cache,
		Downloader: h.downloader,
		Subtitles:  h.fetcher,
		Renderer:   h.renderer,
		Prober:     h.prober,
		Uploader:   h.uploader,
		Reporter:   h.reporter,
	})
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	orch.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	h.orchestrator = orch
	return h
}

func (h *harness) externalCalls() int32 {
	return h.downloader.calls.Load() + h.fetcher.calls.Load() + h.renderer.calls.Load() +
		h.prober.calls.Load() + h.uploader.calls.Load()
}

func (h *harness) assertStagingEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.stagingDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Fatalf("expected empty staging dir, found %v", names)
	}
}

func baseJob(id string) Job {
	return Job{
		ID:        id,
		SourceRef: "https://videos.example.com/clip.mp4",
		Subtitles: srtPayload,
		Dialect:   "srt",
		Options: []captions.Option{
			{Name: captions.KeyFontName, Value: "Roboto"},
			{Name: captions.KeyFontSize, Value: int64(32)},
			{Name: captions.KeyPrimaryColor, Value: "&H00FFFFFF"},
		},
	}
}

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"captionforge/internal/config"
	"captionforge/internal/services"
)

const (
	defaultUserAgent = "captionforge"
	// maxTextBytes bounds remote subtitle payloads.
	maxTextBytes = 16 << 20
	// SourceBaseName is the staged filename stem for downloaded videos.
	SourceBaseName = "source"
	defaultExt     = ".mp4"
)

// HTTPDoer describes the HTTP client used for retrieval.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client downloads videos and subtitle files.
type Client struct {
	client    HTTPDoer
	userAgent string
}

// New returns a Client configured from cfg.
func New(cfg *config.Config) *Client {
	timeout := 5 * time.Minute
	userAgent := defaultUserAgent
	if cfg != nil {
		if t := cfg.FetchTimeout(); t > 0 {
			timeout = t
		}
		if ua := strings.TrimSpace(cfg.Fetch.UserAgent); ua != "" {
			userAgent = ua
		}
	}
	return NewClient(&http.Client{Timeout: timeout}, userAgent)
}

// NewClient wraps an existing HTTP client.
func NewClient(client HTTPDoer, userAgent string) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	return &Client{client: client, userAgent: strings.TrimSpace(userAgent)}
}

// IsRemote reports whether ref is an http(s) URL.
func IsRemote(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Download makes the video behind ref available on local disk. Remote refs are
// written into destDir as source<ext>; local refs are returned as-is after an
// existence check and are never copied or removed.
func (c *Client) Download(ctx context.Context, ref, destDir string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", retrievalError("download", "empty source reference", nil)
	}
	if !IsRemote(ref) {
		return localSource(ref)
	}

	target := filepath.Join(destDir, stagedName(ref))
	resp, err := c.get(ctx, ref)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", retrievalError("download", "create staging directory", err)
	}
	tmp, err := os.CreateTemp(destDir, ".download-*")
	if err != nil {
		return "", retrievalError("download", "create temp file", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return "", retrievalError("download", fmt.Sprintf("read %s", redact(ref)), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", retrievalError("download", "close temp file", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return "", retrievalError("download", "finalize download", err)
	}
	return target, nil
}

// FetchText downloads a remote subtitle payload.
func (c *Client) FetchText(ctx context.Context, ref string) (string, error) {
	if !IsRemote(ref) {
		return "", retrievalError("subtitle", fmt.Sprintf("not a remote reference: %q", ref), nil)
	}
	resp, err := c.get(ctx, strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTextBytes+1))
	if err != nil {
		return "", retrievalError("subtitle", fmt.Sprintf("read %s", redact(ref)), err)
	}
	if len(body) > maxTextBytes {
		return "", retrievalError("subtitle", fmt.Sprintf("payload exceeds %d bytes", maxTextBytes), nil)
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, ref string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, retrievalError("request", "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, retrievalError("request", fmt.Sprintf("get %s", redact(ref)), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, retrievalError("request", fmt.Sprintf("get %s returned %d", redact(ref), resp.StatusCode), nil)
	}
	return resp, nil
}

func localSource(ref string) (string, error) {
	if strings.HasPrefix(strings.ToLower(ref), "file://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", retrievalError("download", "parse file url", err)
		}
		ref = u.Path
	}
	info, err := os.Stat(ref)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", retrievalError("download", fmt.Sprintf("source %q not found", ref), err)
		}
		return "", retrievalError("download", "stat source", err)
	}
	if info.IsDir() {
		return "", retrievalError("download", fmt.Sprintf("source %q is a directory", ref), nil)
	}
	return ref, nil
}

func stagedName(ref string) string {
	ext := defaultExt
	if u, err := url.Parse(ref); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e != "" && len(e) <= 6 {
			ext = e
		}
	}
	return SourceBaseName + ext
}

// redact strips query strings, which often carry signed credentials.
func redact(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}

func retrievalError(operation, message string, err error) error {
	return services.Wrap(services.ErrRetrieval, "retrieval", operation, message, err)
}

package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

var commandContext = exec.CommandContext

const defaultStderrTail = 8 * 1024

// Request describes one render.
type Request struct {
	InputPath   string
	OutputPath  string
	VideoFilter string
	// AudioCodec defaults to "copy" so the source audio is not re-encoded.
	AudioCodec string
	VideoCodec string
}

// ProgressFunc receives the latest encoded frame count. Values never decrease.
type ProgressFunc func(frame int64)

// RenderError reports a failed ffmpeg run with the captured diagnostics.
type RenderError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RenderError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		detail = "unknown ffmpeg error"
	}
	if idx := strings.LastIndex(detail, "\n"); idx >= 0 {
		detail = strings.TrimSpace(detail[idx+1:])
	}
	return fmt.Sprintf("ffmpeg exited with code %d: %s", e.ExitCode, detail)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Option configures the CLI renderer.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(binary) != "" {
			c.binary = strings.TrimSpace(binary)
		}
	}
}

// WithVideoCodec sets an explicit video encoder (e.g. libx264).
func WithVideoCodec(codec string) Option {
	return func(c *CLI) {
		c.videoCodec = strings.TrimSpace(codec)
	}
}

// WithStderrTail bounds how many stderr bytes are kept for RenderError.
func WithStderrTail(n int) Option {
	return func(c *CLI) {
		if n > 0 {
			c.stderrTail = n
		}
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary     string
	videoCodec string
	stderrTail int
}

// NewCLI constructs a renderer using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg", stderrTail: defaultStderrTail}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Args returns the ffmpeg argument list for req.
func (c *CLI) Args(req Request) []string {
	audio := strings.TrimSpace(req.AudioCodec)
	if audio == "" {
		audio = "copy"
	}
	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", req.InputPath,
		"-vf", req.VideoFilter,
	}
	codec := strings.TrimSpace(req.VideoCodec)
	if codec == "" {
		codec = c.videoCodec
	}
	if codec != "" {
		args = append(args, "-c:v", codec)
	}
	args = append(args,
		"-c:a", audio,
		"-progress", "pipe:1",
		"-nostats",
		req.OutputPath,
	)
	return args
}

// Render runs ffmpeg and blocks until it exits.
func (c *CLI) Render(ctx context.Context, req Request, progress ProgressFunc) error {
	if strings.TrimSpace(req.InputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return errors.New("output path required")
	}
	if strings.TrimSpace(req.VideoFilter) == "" {
		return errors.New("video filter required")
	}

	cmd := commandContext(ctx, c.binary, c.Args(req)...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr := newTailBuffer(c.stderrTail)
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	var last int64 = -1
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok || key != "frame" {
			continue
		}
		frame, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || frame <= last {
			continue
		}
		last = frame
		if progress != nil {
			progress(frame)
		}
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return &RenderError{ExitCode: exitCode, Stderr: stderr.String(), Err: err}
	}
	if scanErr != nil {
		return fmt.Errorf("read ffmpeg progress: %w", scanErr)
	}
	return nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

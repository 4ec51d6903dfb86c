package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"captionforge/internal/captionjob"
)

// progressPrinter renders job transitions on a terminal. A single job gets a
// rewritten progress line; batches print one line per transition.
type progressPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	inline  bool
	pending bool
}

// newProgressPrinter returns nil when out is not a terminal so redirected
// output stays clean.
func newProgressPrinter(out io.Writer, inline bool) *progressPrinter {
	if !isTerminal(out) {
		return nil
	}
	return &progressPrinter{out: out, inline: inline}
}

func (p *progressPrinter) JobProgress(jobID string, status captionjob.Status, percent float64) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inline {
		line := fmt.Sprintf("%s  %s", jobID, status)
		if status == captionjob.StatusRendering && percent >= 0 {
			line = fmt.Sprintf("%s %5.1f%%", line, percent)
		}
		fmt.Fprintf(p.out, "\r\033[K%s", line)
		p.pending = true
		if status.Terminal() {
			fmt.Fprintln(p.out)
			p.pending = false
		}
		return
	}
	if status == captionjob.StatusRendering && percent > 0 {
		return
	}
	fmt.Fprintf(p.out, "%-36s %s\n", jobID, status)
}

// finish terminates a dangling inline line.
func (p *progressPrinter) finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending {
		fmt.Fprintln(p.out)
		p.pending = false
	}
}

// reporter converts a nil printer into a nil interface for the orchestrator.
func (p *progressPrinter) reporter() captionjob.ProgressReporter {
	if p == nil {
		return nil
	}
	return p
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

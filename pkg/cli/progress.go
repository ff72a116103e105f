package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running operations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

// SimpleProgress implements a simple text-based byte progress reporter.
type SimpleProgress struct {
	mu      sync.Mutex
	total   int64
	current int64
	started time.Time
	writer  io.Writer
}

// NewProgressReporter creates a new progress reporter that writes to w.
// If w is nil, it defaults to os.Stderr.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &SimpleProgress{
		writer: w,
	}
}

// Start initializes the progress reporter with the total number of bytes.
func (p *SimpleProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()

	p.render()
}

// Update updates the current progress.
func (p *SimpleProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render()
}

// Finish marks the progress as complete.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

// Error reports an error during progress.
func (p *SimpleProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ Error: %v\n", err)
}

func (p *SimpleProgress) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.current) / float64(p.total) * 100
	barWidth := 40
	filled := int(float64(barWidth) * percent / 100)
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	rate := 0.0
	if elapsed := time.Since(p.started).Seconds(); elapsed > 0 {
		rate = float64(p.current) / elapsed
	}

	fmt.Fprintf(p.writer, "\rProgress: [%s] %.1f%% (%s/%s) %s/s",
		bar, percent, FormatBytes(p.current), FormatBytes(p.total), FormatBytes(int64(rate)))
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// ProgressWriter is an http.ResponseWriter that copies the body to an
// io.Writer and reports every write to a ProgressReporter. It lets command
// line tools drive the same streaming code as the HTTP handlers.
type ProgressWriter struct {
	out      io.Writer
	progress ProgressReporter
	header   http.Header

	status  int
	written int64
}

// NewProgressWriter wraps out. progress may be nil.
func NewProgressWriter(out io.Writer, progress ProgressReporter) *ProgressWriter {
	return &ProgressWriter{
		out:      out,
		progress: progress,
		header:   make(http.Header),
	}
}

// Header implements http.ResponseWriter.
func (pw *ProgressWriter) Header() http.Header {
	return pw.header
}

// WriteHeader implements http.ResponseWriter.
func (pw *ProgressWriter) WriteHeader(status int) {
	if pw.status == 0 {
		pw.status = status
	}
}

// Write implements http.ResponseWriter.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	if pw.status == 0 {
		pw.status = http.StatusOK
	}
	n, err := pw.out.Write(p)
	pw.written += int64(n)
	if pw.progress != nil {
		pw.progress.Update(pw.written)
	}
	return n, err
}

// Status returns the status passed to WriteHeader, or 0.
func (pw *ProgressWriter) Status() int {
	return pw.status
}

// Written returns the number of body bytes written.
func (pw *ProgressWriter) Written() int64 {
	return pw.written
}

// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"errors"
	"net/http"
	"sync"
	"time"
)

// ErrBrokenPipe is the default failure of a ResponseWriter that has hit its
// byte limit.
var ErrBrokenPipe = errors.New("write: broken pipe")

// ResponseWriter is an http.ResponseWriter that records what was written
// and can fail like a client that hung up part way through a body.
type ResponseWriter struct {
	mu sync.Mutex

	header http.Header
	status int
	body   bytes.Buffer

	// FailAfter is the number of body bytes accepted before writes fail.
	// Negative means never.
	FailAfter int64

	// FailErr is returned once FailAfter is reached. Defaults to
	// ErrBrokenPipe.
	FailErr error

	writeCalls   int
	headerCalls  int
	flushes      int
	deadlines    int
	failedWrites int
}

// NewResponseWriter returns a writer that fails after failAfter bytes.
func NewResponseWriter(failAfter int64) *ResponseWriter {
	return &ResponseWriter{
		header:    make(http.Header),
		FailAfter: failAfter,
	}
}

func (w *ResponseWriter) Header() http.Header {
	return w.header
}

func (w *ResponseWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.headerCalls++
	if w.status == 0 {
		w.status = code
	}
}

func (w *ResponseWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.writeCalls++
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if w.FailAfter >= 0 {
		room := w.FailAfter - int64(w.body.Len())
		if room < int64(len(p)) {
			n := 0
			if room > 0 {
				n, _ = w.body.Write(p[:room])
			}
			w.failedWrites++
			if w.FailErr != nil {
				return n, w.FailErr
			}
			return n, ErrBrokenPipe
		}
	}
	return w.body.Write(p)
}

// Flush implements http.Flusher.
func (w *ResponseWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushes++
}

// SetWriteDeadline lets http.ResponseController set deadlines.
func (w *ResponseWriter) SetWriteDeadline(time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deadlines++
	return nil
}

// Status returns the committed status code, or 0.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Body returns a copy of the body written so far.
func (w *ResponseWriter) Body() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return bytes.Clone(w.body.Bytes())
}

// WriteCalls returns the number of Write calls, including failed ones.
func (w *ResponseWriter) WriteCalls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writeCalls
}

// HeaderCalls returns the number of WriteHeader calls.
func (w *ResponseWriter) HeaderCalls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.headerCalls
}

// Flushes returns the number of Flush calls.
func (w *ResponseWriter) Flushes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushes
}

// Deadlines returns the number of SetWriteDeadline calls.
func (w *ResponseWriter) Deadlines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.deadlines
}

// FailedWrites returns the number of writes that hit the limit.
func (w *ResponseWriter) FailedWrites() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failedWrites
}

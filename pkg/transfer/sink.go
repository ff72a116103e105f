package transfer

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"
)

var (
	// ErrClientGone means the client stopped reading. It ends a transfer
	// normally.
	ErrClientGone = errors.New("client disconnected")

	// ErrStalled means a single write waited longer than the stall timeout.
	ErrStalled = errors.New("client stopped draining")

	errSinkClosed = errors.New("sink closed")
)

// Sink is the response side of a transfer. Headers are committed lazily on
// the first body byte so that a backend failure before any data can still
// become a clean error response. Every write is flushed before the next
// part is requested, so a slow client slows the backend down with it.
type Sink struct {
	w      http.ResponseWriter
	rc     *http.ResponseController
	status int
	stall  time.Duration

	mu        sync.Mutex
	committed bool
	written   int64
	failed    error
	closed    bool
	closeOnce sync.Once
}

// NewSink wraps w. status is the code sent on commit (200 or 206);
// stallTimeout of zero disables the per-write deadline.
func NewSink(w http.ResponseWriter, status int, stallTimeout time.Duration) *Sink {
	return &Sink{
		w:      w,
		rc:     http.NewResponseController(w),
		status: status,
		stall:  stallTimeout,
	}
}

// Header returns the response headers. Changes after commit have no effect.
func (s *Sink) Header() http.Header {
	return s.w.Header()
}

// Commit sends the status line and headers if that has not happened yet.
func (s *Sink) Commit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked()
}

func (s *Sink) commitLocked() {
	if s.committed || s.closed {
		return
	}
	s.committed = true
	s.w.WriteHeader(s.status)
}

// Write sends p and flushes it. After the first failure every call returns
// the same error without touching the connection.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed != nil {
		return 0, s.failed
	}
	if s.closed {
		return 0, errSinkClosed
	}
	s.commitLocked()

	if s.stall > 0 {
		// Writers without deadline support simply run unbounded.
		_ = s.rc.SetWriteDeadline(time.Now().Add(s.stall))
	}

	n, err := s.w.Write(p)
	s.written += int64(n)
	if err == nil {
		if ferr := s.rc.Flush(); ferr != nil && !errors.Is(ferr, http.ErrNotSupported) {
			err = ferr
		}
	}
	if err != nil {
		s.failed = classifyWriteError(err)
		return n, s.failed
	}
	return n, nil
}

func classifyWriteError(err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrStalled, err)
	}
	return fmt.Errorf("%w: %v", ErrClientGone, err)
}

// Committed reports whether the status line has been sent.
func (s *Sink) Committed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed
}

// Written returns the number of body bytes accepted by the connection.
func (s *Sink) Written() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// Err returns the first write failure, if any.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Close finalises the sink exactly once. Later writes fail and nothing more
// reaches the connection.
func (s *Sink) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		if s.stall > 0 && s.failed == nil {
			_ = s.rc.SetWriteDeadline(time.Time{})
		}
	})
}

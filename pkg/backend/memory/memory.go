// Package memory provides an in-process backend.Client that serves media from
// RAM. It is used by tests and for local development, and can simulate the
// faults a real messaging backend exhibits: dropped sessions, transient fetch
// failures and downloads that die mid-file.
package memory

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/backend"
)

// ErrInjected is the cause of every simulated failure.
var ErrInjected = errors.New("injected failure")

// Backend is an in-memory backend.Client.
type Backend struct {
	mu        sync.Mutex
	connected bool
	reachable bool

	messages map[string]map[int64]backend.Message
	files    map[int64][]byte
	nextID   int64

	failConnects  int
	failFetches   int
	failReadsFrom int64
	partDelay     time.Duration

	connectCalls int
	fetchCalls   int
	readCalls    int
}

var (
	_ backend.Client = (*Backend)(nil)
	_ backend.Pinger = (*Backend)(nil)
)

// New returns a reachable, disconnected backend with no content.
func New() *Backend {
	return &Backend{
		reachable:     true,
		messages:      make(map[string]map[int64]backend.Message),
		files:         make(map[int64][]byte),
		nextID:        1000,
		failReadsFrom: -1,
	}
}

// AddMessage stores msg under source as-is.
func (b *Backend) AddMessage(source string, msg backend.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.messages[source] == nil {
		b.messages[source] = make(map[int64]backend.Message)
	}
	b.messages[source][msg.ID] = msg
}

// AddMedia stores content as a document attached to message id and returns
// the resulting message.
func (b *Backend) AddMedia(source string, id int64, caption string, content []byte, mimeType string) backend.Message {
	b.mu.Lock()
	b.nextID++
	storageID := b.nextID
	b.files[storageID] = content
	b.mu.Unlock()

	msg := backend.Message{
		ID:      id,
		Caption: caption,
		Media: &backend.Media{
			StorageID:     storageID,
			AccessHash:    storageID * 7919,
			FileReference: []byte(strconv.FormatInt(storageID, 16)),
			Size:          int64(len(content)),
			DCID:          int(storageID%5) + 1,
			MimeType:      mimeType,
		},
	}
	b.AddMessage(source, msg)
	return msg
}

// LoadDir adds every regular file in dir whose base name is a message ID,
// e.g. "1042.mp4" or "1043.pdf". A sibling "<id>.txt" becomes the caption.
func (b *Backend) LoadDir(source, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read fixtures dir %q: %w", dir, err)
	}

	loaded := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".txt" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(e.Name(), ext), 10, 64)
		if err != nil {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return loaded, err
		}
		caption, _ := os.ReadFile(filepath.Join(dir, strconv.FormatInt(id, 10)+".txt"))
		b.AddMedia(source, id, strings.TrimSpace(string(caption)), content, mime.TypeByExtension(ext))
		loaded++
	}
	return loaded, nil
}

// Disconnect drops the session as a network failure would.
func (b *Backend) Disconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = false
}

// SetReachable controls whether Connect and Ping can succeed.
func (b *Backend) SetReachable(reachable bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reachable = reachable
	if !reachable {
		b.connected = false
	}
}

// FailConnects makes the next n Connect calls fail.
func (b *Backend) FailConnects(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failConnects = n
}

// FailFetches makes the next n FetchMessages calls fail.
func (b *Backend) FailFetches(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failFetches = n
}

// FailReadsFrom makes every ReadPart at or beyond offset fail. Negative
// disables the fault.
func (b *Backend) FailReadsFrom(offset int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failReadsFrom = offset
}

// SetPartDelay slows every ReadPart down by d.
func (b *Backend) SetPartDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.partDelay = d
}

// ConnectCalls returns the number of Connect calls made.
func (b *Backend) ConnectCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connectCalls
}

// FetchCalls returns the number of FetchMessages calls made.
func (b *Backend) FetchCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetchCalls
}

// ReadCalls returns the number of ReadPart calls made.
func (b *Backend) ReadCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readCalls
}

// Connect implements backend.Client.
func (b *Backend) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connectCalls++

	if !b.reachable {
		return &backend.Error{Op: "connect", Message: "backend unreachable", Cause: ErrInjected}
	}
	if b.failConnects > 0 {
		b.failConnects--
		return &backend.Error{Op: "connect", Message: "connect refused", Cause: ErrInjected}
	}
	b.connected = true
	return nil
}

// IsConnected implements backend.Client.
func (b *Backend) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// Ping implements backend.Pinger.
func (b *Backend) Ping(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.reachable {
		b.connected = false
		return &backend.Error{Op: "ping", Message: "backend unreachable", Cause: ErrInjected}
	}
	if !b.connected {
		return backend.ErrNotConnected
	}
	return nil
}

// FetchMessages implements backend.Client.
func (b *Backend) FetchMessages(ctx context.Context, source string, ids []int64) ([]backend.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetchCalls++

	if !b.connected {
		return nil, backend.ErrNotConnected
	}
	if b.failFetches > 0 {
		b.failFetches--
		return nil, &backend.Error{Op: "fetch_messages", Message: "transient failure", Cause: ErrInjected}
	}

	var out []backend.Message
	for _, id := range ids {
		if msg, ok := b.messages[source][id]; ok {
			out = append(out, msg)
		}
	}
	return out, nil
}

// ReadPart implements backend.Client. It enforces the same alignment rules
// as the real backend so that callers violating them fail in tests.
func (b *Backend) ReadPart(ctx context.Context, media *backend.Media, offset, limit int64) ([]byte, error) {
	b.mu.Lock()
	b.readCalls++
	delay := b.partDelay
	connected := b.connected
	failFrom := b.failReadsFrom
	content, ok := b.files[media.StorageID]
	b.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !connected {
		return nil, backend.ErrNotConnected
	}
	if offset%backend.PartAlign != 0 || limit%backend.PartAlign != 0 || limit <= 0 {
		return nil, &backend.Error{Op: "read_part", Message: fmt.Sprintf("misaligned part offset=%d limit=%d", offset, limit)}
	}
	if offset/backend.MaxPartSize != (offset+limit-1)/backend.MaxPartSize {
		return nil, &backend.Error{Op: "read_part", Message: fmt.Sprintf("part crosses 1MiB boundary offset=%d limit=%d", offset, limit)}
	}
	if !ok {
		return nil, &backend.Error{Op: "read_part", Message: "file reference invalid"}
	}
	if failFrom >= 0 && offset >= failFrom {
		return nil, &backend.Error{Op: "read_part", Message: "connection reset", Cause: ErrInjected}
	}

	if offset >= int64(len(content)) {
		return nil, nil
	}
	end := min(offset+limit, int64(len(content)))
	part := make([]byte, end-offset)
	copy(part, content[offset:end])
	return part, nil
}

// Close implements backend.Client.
func (b *Backend) Close() error {
	b.Disconnect()
	return nil
}

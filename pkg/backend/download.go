package backend

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

const (
	// PartAlign is the granularity of part offsets and sizes.
	PartAlign = 4096

	// MaxPartSize is the largest part the backend serves in one call.
	MaxPartSize = 1024 * 1024
)

// ValidChunkSize reports whether size can be used as a part size. Parts
// start on multiples of the chunk size, so the chunk size must divide
// MaxPartSize for no part to cross a 1MiB boundary.
func ValidChunkSize(size int64) bool {
	return size >= PartAlign && size%PartAlign == 0 && size <= MaxPartSize && MaxPartSize%size == 0
}

var errStreamClosed = errors.New("backend stream closed")

// cursor turns aligned backend parts into exactly the requested window.
type cursor struct {
	chunk     int64
	next      int64 // offset of the next part to request
	skip      int64 // bytes to drop from the front of the next part
	remaining int64
}

func newCursor(opts DownloadOptions) (*cursor, error) {
	if !ValidChunkSize(opts.ChunkSize) {
		return nil, fmt.Errorf("invalid chunk size %d: must be a multiple of %d that divides %d", opts.ChunkSize, PartAlign, MaxPartSize)
	}
	if opts.Offset < 0 || opts.Limit < 0 {
		return nil, fmt.Errorf("invalid window offset=%d limit=%d", opts.Offset, opts.Limit)
	}
	// Parts start on a chunk boundary so none of them crosses a 1MiB boundary.
	first := opts.Offset - opts.Offset%opts.ChunkSize
	return &cursor{
		chunk:     opts.ChunkSize,
		next:      first,
		skip:      opts.Offset - first,
		remaining: opts.Limit,
	}, nil
}

// parts reports how many backend parts are still needed.
func (c *cursor) parts() int64 {
	if c.remaining == 0 {
		return 0
	}
	return (c.skip + c.remaining + c.chunk - 1) / c.chunk
}

// take trims a fetched part to the window and advances the cursor.
func (c *cursor) take(part []byte) ([]byte, error) {
	c.next += c.chunk
	if int64(len(part)) <= c.skip {
		return nil, ErrShortRead
	}
	part = part[c.skip:]
	c.skip = 0
	if int64(len(part)) > c.remaining {
		part = part[:c.remaining]
	}
	c.remaining -= int64(len(part))
	return part, nil
}

// Stream iterates over a byte window one backend part at a time. It is not
// safe for concurrent use.
type Stream struct {
	client Client
	media  *Media
	cur    *cursor
	closed bool
}

// NewStream prepares an iterator over the window described by opts. No
// backend call is made until Next.
func NewStream(client Client, media *Media, opts DownloadOptions) (*Stream, error) {
	cur, err := newCursor(opts)
	if err != nil {
		return nil, err
	}
	return &Stream{client: client, media: media, cur: cur}, nil
}

// Next returns the next chunk of the window, or io.EOF once Limit bytes have
// been produced.
func (s *Stream) Next(ctx context.Context) ([]byte, error) {
	if s.closed {
		return nil, errStreamClosed
	}
	if s.cur.remaining == 0 {
		return nil, io.EOF
	}
	part, err := s.client.ReadPart(ctx, s.media, s.cur.next, s.cur.chunk)
	if err != nil {
		return nil, err
	}
	return s.cur.take(part)
}

// Remaining reports how many bytes of the window have not been produced yet.
func (s *Stream) Remaining() int64 {
	return s.cur.remaining
}

// Close stops the iteration. Further calls to Next fail.
func (s *Stream) Close() error {
	s.closed = true
	return nil
}

// Copy writes the window described by opts into w, fetching up to
// opts.Workers parts concurrently and writing them in order. It returns the
// number of bytes written. A write error stops the copy and is returned
// unchanged so callers can tell sink failures from backend failures.
func Copy(ctx context.Context, client Client, media *Media, opts DownloadOptions, w io.Writer) (int64, error) {
	cur, err := newCursor(opts)
	if err != nil {
		return 0, err
	}
	workers := int64(opts.Workers)
	if workers < 1 {
		workers = 1
	}

	var written int64
	for cur.remaining > 0 {
		batch := min(workers, cur.parts())
		parts := make([][]byte, batch)

		g, gctx := errgroup.WithContext(ctx)
		for i := int64(0); i < batch; i++ {
			offset := cur.next + i*cur.chunk
			g.Go(func() error {
				part, err := client.ReadPart(gctx, media, offset, cur.chunk)
				parts[i] = part
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return written, err
		}

		for _, part := range parts {
			chunk, err := cur.take(part)
			if err != nil {
				return written, err
			}
			n, err := w.Write(chunk)
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

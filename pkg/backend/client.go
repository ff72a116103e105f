package backend

import "context"

// Client is the narrow capability surface the relay consumes from the
// messaging backend. Session bootstrap and the wire protocol live behind it.
//
// Implementations must be safe for concurrent use. All methods accept a
// context.Context for cancellation and must return promptly once it is done.
type Client interface {
	// Connect establishes or re-establishes the backend session.
	Connect(ctx context.Context) error

	// IsConnected reports the last known session state without I/O.
	IsConnected() bool

	// FetchMessages returns the messages with the given IDs from source.
	// Missing IDs are omitted from the result rather than reported as errors.
	FetchMessages(ctx context.Context, source string, ids []int64) ([]Message, error)

	// ReadPart returns up to limit bytes of media starting at offset. Offset
	// and limit are multiples of 4096 and a part never crosses a 1MiB
	// boundary. A short or empty result means the end of the file.
	ReadPart(ctx context.Context, media *Media, offset, limit int64) ([]byte, error)

	// Close releases the session and any pooled connections.
	Close() error
}

// Pinger is implemented by clients that can verify the session with a
// lightweight round trip instead of trusting local state.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Message is a single backend message.
type Message struct {
	// ID is the backend message identifier.
	ID int64 `json:"id"`

	// Caption is the text attached to the message. May be empty.
	Caption string `json:"caption,omitempty"`

	// Media is nil when the message carries no document.
	Media *Media `json:"media,omitempty"`
}

// Media addresses a document stored on the backend. It must be fetched fresh
// for every request because FileReference expires.
type Media struct {
	StorageID     int64  `json:"storage_id"`
	AccessHash    int64  `json:"access_hash"`
	FileReference []byte `json:"file_reference"`

	// Size is the authoritative length in bytes.
	Size int64 `json:"size"`

	// DCID is the datacenter holding the file.
	DCID int `json:"dc_id"`

	MimeType string `json:"mime_type,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

// DownloadOptions selects a byte window and how it is pulled.
type DownloadOptions struct {
	// Offset is the first byte of the window.
	Offset int64

	// Limit is the number of bytes in the window.
	Limit int64

	// ChunkSize is the backend part size. Must be a multiple of 4096 that
	// divides MaxPartSize (see ValidChunkSize).
	ChunkSize int64

	// Workers is the number of parts fetched concurrently by Copy.
	Workers int
}

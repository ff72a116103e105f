package handlers

import (
	"context"

	"github.com/Meijaisharma/PathshalaPro/pkg/backend"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
)

// Sessions hands out the live backend client. *session.Supervisor
// implements it.
type Sessions interface {
	Client(ctx context.Context) (backend.Client, error)
}

// Describer looks up the media descriptor of a message. *locator.Locator
// implements it.
type Describer interface {
	Describe(ctx context.Context, messageID int64) (*backend.Media, error)
}

// Captioner looks up the caption of a message. *locator.Locator
// implements it.
type Captioner interface {
	Caption(ctx context.Context, messageID int64) (string, error)
}

// Recorder accepts finished playback records. *recorder.Recorder
// implements it; nil disables recording.
type Recorder interface {
	Record(ctx context.Context, record *ledger.Record) error
}

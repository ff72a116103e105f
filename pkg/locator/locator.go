// Package locator turns a resolved message ID into a fresh media
// descriptor, retrying transient backend failures.
package locator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/backend"
	"github.com/Meijaisharma/PathshalaPro/pkg/retry"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/metrics"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrNotFound means the message does not exist or carries no media.
	// It is definitive and never retried.
	ErrNotFound = errors.New("content not found")

	// ErrUnavailable means every attempt to reach the backend failed.
	ErrUnavailable = errors.New("content temporarily unavailable")
)

// Lookup results, used as metric labels.
const (
	ResultFound       = "found"
	ResultNotFound    = "not_found"
	ResultUnavailable = "unavailable"
	ResultCancelled   = "cancelled"
)

// ClientSource hands out a connected backend client. *session.Supervisor
// implements it.
type ClientSource interface {
	Client(ctx context.Context) (backend.Client, error)
}

// UnavailableError wraps the last failure once retries are used up. It
// matches ErrUnavailable with errors.Is.
type UnavailableError struct {
	MessageID int64
	Attempts  int
	Cause     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("message %d unavailable after %d attempts: %v", e.MessageID, e.Attempts, e.Cause)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// Locator fetches messages from a single configured source.
type Locator struct {
	sessions ClientSource
	source   string
	policy   retry.Policy

	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

// Option configures a Locator.
type Option func(*Locator)

// WithMetrics records lookup results on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(l *Locator) { l.metrics = collector }
}

// WithTracer adds a span per lookup.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(l *Locator) { l.tracer = tracer }
}

// New creates a Locator. policy.OnRetry is replaced with a logging hook.
func New(sessions ClientSource, source string, policy retry.Policy, opts ...Option) *Locator {
	l := &Locator{
		sessions: sessions,
		source:   source,
		policy:   policy,
		logger:   slog.Default().With("component", "locator", "source", source),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns the message with messageID. Each attempt asks the session
// supervisor for a client, so a dropped session is repaired between tries.
func (l *Locator) Locate(ctx context.Context, messageID int64) (*backend.Message, error) {
	ctx, span := l.tracer.Start(ctx, "locate")
	defer span.End()
	span.SetAttributes(tracing.AttrMessageID.Int64(messageID))

	start := time.Now()
	msg, attempts, err := l.fetch(ctx, messageID, true, func(attempt int) {
		tracing.AddEvent(span, "retry", attribute.Int("attempt", attempt))
	})
	span.SetAttributes(tracing.AttrAttempts.Int(attempts))

	result := ResultFound
	switch {
	case err == nil:
		tracing.SetMediaAttributes(span, msg.Media.Size, msg.Media.MimeType)
	case errors.Is(err, ErrNotFound):
		result = ResultNotFound
	case errors.Is(err, ErrUnavailable):
		result = ResultUnavailable
		tracing.SetError(span, err)
	default:
		result = ResultCancelled
	}
	l.metrics.RecordLocate(result, attempts, time.Since(start))

	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Describe returns only the media descriptor of messageID.
func (l *Locator) Describe(ctx context.Context, messageID int64) (*backend.Media, error) {
	msg, err := l.Locate(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return msg.Media, nil
}

// Caption returns the caption of messageID. Unlike Locate it accepts
// messages without media.
func (l *Locator) Caption(ctx context.Context, messageID int64) (string, error) {
	msg, _, err := l.fetch(ctx, messageID, false, nil)
	if err != nil {
		return "", err
	}
	return msg.Caption, nil
}

// fetch runs the retry loop. Errors are ErrNotFound, an *UnavailableError
// or the context's error.
func (l *Locator) fetch(ctx context.Context, messageID int64, requireMedia bool, onRetry func(attempt int)) (*backend.Message, int, error) {
	attempts := 0

	policy := l.policy
	policy.OnRetry = func(attempt int, err error) {
		l.logger.WarnContext(ctx, "lookup failed, retrying",
			"message_id", messageID,
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"error", err,
		)
		if onRetry != nil {
			onRetry(attempt)
		}
	}

	var msg *backend.Message
	err := policy.Do(ctx, func(ctx context.Context) error {
		attempts++

		client, err := l.sessions.Client(ctx)
		if err != nil {
			return err
		}

		msgs, err := client.FetchMessages(ctx, l.source, []int64{messageID})
		if err != nil {
			return err
		}

		for i := range msgs {
			if msgs[i].ID != messageID {
				continue
			}
			if requireMedia && msgs[i].Media == nil {
				return retry.Permanent(fmt.Errorf("%w: message %d has no media", ErrNotFound, messageID))
			}
			msg = &msgs[i]
			return nil
		}
		return retry.Permanent(fmt.Errorf("%w: message %d", ErrNotFound, messageID))
	})

	if err == nil || errors.Is(err, ErrNotFound) {
		return msg, attempts, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, attempts, ctxErr
	}

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		err = exhausted.Last
	}
	l.logger.ErrorContext(ctx, "lookup failed",
		"message_id", messageID,
		"attempts", attempts,
		"error", err,
	)
	return nil, attempts, &UnavailableError{MessageID: messageID, Attempts: attempts, Cause: err}
}

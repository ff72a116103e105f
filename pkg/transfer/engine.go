// Package transfer streams a byte window of a backend file to an HTTP
// client with partial-content semantics and flow control.
//
// Two strategies are available. Chunked pulls one part at a time and
// flushes it before asking for the next, which gives the fastest first byte
// and the tightest back-pressure. Bulk pulls several parts in parallel and
// writes them in order, trading memory for throughput on fast links.
package transfer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/backend"
	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/tracing"
)

// Strategy selects how parts are pulled from the backend.
type Strategy string

const (
	StrategyChunked Strategy = config.StrategyChunked
	StrategyBulk    Strategy = config.StrategyBulk
)

// Outcomes reported in Result, logs and metrics.
const (
	OutcomeComplete   = "complete"
	OutcomeClientGone = "client_gone"
	OutcomeAborted    = "aborted"
)

// Options tune the engine. They can be swapped at runtime.
type Options struct {
	Strategy     Strategy
	ChunkSize    int64
	Workers      int
	StallTimeout time.Duration
}

// OptionsFromConfig converts validated configuration into Options.
func OptionsFromConfig(cfg config.TransferConfig) Options {
	return Options{
		Strategy:     Strategy(cfg.Strategy),
		ChunkSize:    cfg.ChunkSize,
		Workers:      cfg.Workers,
		StallTimeout: cfg.StallTimeout,
	}
}

// Request describes one media request after identifier resolution.
type Request struct {
	ClientID   int64
	MessageID  int64
	RangeStart int64
	RangeEnd   int64
	IsHead     bool
}

// Plan is the concrete work for one transfer.
type Plan struct {
	Offset    int64
	Limit     int64
	ChunkSize int64
	Workers   int
	Strategy  Strategy
}

// Result summarises a finished transfer.
type Result struct {
	BytesWritten int64
	ClientGone   bool
	Strategy     Strategy
	Duration     time.Duration
}

// Outcome returns the outcome label for r and the error returned with it.
func (r Result) Outcome(err error) string {
	switch {
	case err != nil:
		return OutcomeAborted
	case r.ClientGone:
		return OutcomeClientGone
	default:
		return OutcomeComplete
	}
}

const defaultChunkSize = 512 * 1024

// Engine runs transfers. It is safe for concurrent use.
type Engine struct {
	opts   atomic.Pointer[Options]
	logger *slog.Logger
	tracer *tracing.Tracer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTracer adds a span per transfer.
func WithTracer(tracer *tracing.Tracer) EngineOption {
	return func(e *Engine) { e.tracer = tracer }
}

// NewEngine creates an Engine with the given options.
func NewEngine(opts Options, engineOpts ...EngineOption) *Engine {
	e := &Engine{
		logger: slog.Default().With("component", "transfer"),
	}
	for _, o := range engineOpts {
		o(e)
	}
	e.SetOptions(opts)
	return e
}

// SetOptions replaces the tuning for transfers started afterwards.
func (e *Engine) SetOptions(opts Options) {
	if opts.Strategy == "" {
		opts.Strategy = StrategyChunked
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	} else if !backend.ValidChunkSize(opts.ChunkSize) {
		e.logger.Warn("chunk size does not divide 1MiB, using default",
			"chunk_size", opts.ChunkSize,
			"default", defaultChunkSize,
		)
		opts.ChunkSize = defaultChunkSize
	}
	e.opts.Store(&opts)
}

// Options returns the current tuning.
func (e *Engine) Options() Options {
	return *e.opts.Load()
}

// Plan builds the plan for a window using the current options.
func (e *Engine) Plan(offset, limit int64) Plan {
	opts := e.Options()
	p := Plan{
		Offset:    offset,
		Limit:     limit,
		ChunkSize: opts.ChunkSize,
		Workers:   1,
		Strategy:  opts.Strategy,
	}
	if p.Strategy == StrategyBulk {
		p.Workers = opts.Workers
	}
	return p
}

// NewSink wraps w with the engine's current stall timeout.
func (e *Engine) NewSink(w http.ResponseWriter, status int) *Sink {
	return NewSink(w, status, e.Options().StallTimeout)
}

// Transfer streams limit bytes of media starting at offset into sink and
// closes it.
//
// A client that disconnects ends the transfer normally: the error is nil
// and Result.ClientGone is set. Backend failures and stalled clients return
// a *TransferError; whether the caller can still answer with an error
// status depends on sink.Committed.
func (e *Engine) Transfer(ctx context.Context, client backend.Client, media *backend.Media, offset, limit int64, sink *Sink) (Result, error) {
	defer sink.Close()

	plan := e.Plan(offset, limit)
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "transfer")
	defer span.End()

	if limit == 0 {
		sink.Commit()
		return Result{Strategy: plan.Strategy}, nil
	}

	dl := backend.DownloadOptions{
		Offset:    plan.Offset,
		Limit:     plan.Limit,
		ChunkSize: plan.ChunkSize,
		Workers:   plan.Workers,
	}

	var err error
	switch plan.Strategy {
	case StrategyBulk:
		_, err = backend.Copy(ctx, client, media, dl, sink)
	default:
		err = e.chunked(ctx, client, media, dl, sink)
	}

	res := Result{
		BytesWritten: sink.Written(),
		Strategy:     plan.Strategy,
		Duration:     time.Since(start),
	}
	err = e.finish(ctx, plan, sink, &res, err)

	tracing.SetTransferAttributes(span, string(plan.Strategy), plan.ChunkSize, res.BytesWritten, res.Outcome(err))
	tracing.SetError(span, err)
	return res, err
}

func (e *Engine) chunked(ctx context.Context, client backend.Client, media *backend.Media, dl backend.DownloadOptions, sink *Sink) error {
	stream, err := backend.NewStream(client, media, dl)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		chunk, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := sink.Write(chunk); err != nil {
			return err
		}
	}
}

// finish maps the raw strategy error onto the transfer contract.
func (e *Engine) finish(ctx context.Context, plan Plan, sink *Sink, res *Result, err error) error {
	if err == nil {
		return nil
	}

	// The request context ends when the client hangs up; backend calls
	// then fail with the context's error.
	if errors.Is(err, ErrClientGone) || (ctx.Err() != nil && errors.Is(err, ctx.Err())) {
		res.ClientGone = true
		e.logger.DebugContext(ctx, "client went away",
			"bytes", res.BytesWritten,
			"limit", plan.Limit,
		)
		return nil
	}

	op := "backend"
	if errors.Is(err, ErrStalled) {
		op = "stall"
	}
	return &TransferError{
		Op:        op,
		Offset:    plan.Offset + res.BytesWritten,
		Written:   res.BytesWritten,
		Committed: sink.Committed(),
		Cause:     err,
	}
}

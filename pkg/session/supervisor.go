// Package session keeps the relay's single backend session alive.
//
// The Supervisor is the only writer of connection state. Request handlers
// read an immutable State snapshot and, when the session is down, ask the
// Supervisor for one synchronous reconnect. A background heartbeat repairs
// the session between requests. Reconnect failures are reported, never
// fatal: the relay keeps serving and retries on the next request or tick.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/backend"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/metrics"

	"golang.org/x/sync/singleflight"
)

// Reconnect triggers, used as metric labels and in logs.
const (
	TriggerStartup   = "startup"
	TriggerHeartbeat = "heartbeat"
	TriggerRequest   = "request"
)

// ErrNotReady is returned by HealthCheck while the session is down.
var ErrNotReady = errors.New("backend session not connected")

// State is a point-in-time view of the backend session. Snapshots are never
// modified after they are published.
type State struct {
	Client    backend.Client
	Connected bool
	LastCheck time.Time
	LastError error
}

// ConnectionError is returned when the session is down and the reconnect
// made on behalf of a request failed.
type ConnectionError struct {
	Trigger string
	Cause   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("backend session unavailable (%s reconnect): %v", e.Trigger, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Config controls heartbeat cadence and connect deadlines.
type Config struct {
	// HeartbeatInterval is the time between session checks. Default 25s.
	HeartbeatInterval time.Duration

	// ConnectTimeout bounds each Connect and Ping call. Default 15s.
	ConnectTimeout time.Duration
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithMetrics records reconnects and session state on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Supervisor) {
		s.metrics = collector
	}
}

// WithLogger replaces the default component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		s.logger = logger
	}
}

// Supervisor owns the backend session.
type Supervisor struct {
	client  backend.Client
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Collector

	state atomic.Pointer[State]
	group singleflight.Group

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
}

// NewSupervisor creates a Supervisor for client. The session is not
// contacted until Start or the first request.
func NewSupervisor(client backend.Client, cfg Config, opts ...Option) *Supervisor {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 25 * time.Second
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 15 * time.Second
	}

	s := &Supervisor{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "session"),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.state.Store(&State{Client: client, Connected: client.IsConnected()})
	return s
}

// Start performs the initial connect and launches the heartbeat. A failed
// initial connect is logged and leaves the relay not ready; requests will
// reconnect lazily. Start returns once the initial attempt has finished.
func (s *Supervisor) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		if err := s.reconnect(ctx, TriggerStartup); err != nil {
			s.logger.Warn("initial backend connect failed, will retry",
				"error", err,
				"heartbeat_interval", s.cfg.HeartbeatInterval,
			)
		} else {
			s.logger.Info("backend session established")
		}

		s.started.Store(true)
		go s.run()
	})
}

// Stop ends the heartbeat and waits for it to exit. It does not close the
// backend client.
func (s *Supervisor) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	if s.started.Load() {
		<-s.done
	}
}

func (s *Supervisor) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Heartbeat(ctx)
		}
	}
}

// Heartbeat verifies the session once. Clients implementing backend.Pinger
// are pinged; others are trusted to report their own state. A dead session
// gets a single reconnect whose failure is logged and otherwise ignored.
func (s *Supervisor) Heartbeat(ctx context.Context) {
	var err error
	if pinger, ok := s.client.(backend.Pinger); ok {
		pingCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		err = pinger.Ping(pingCtx)
		cancel()
	} else if !s.client.IsConnected() {
		err = backend.ErrNotConnected
	}

	if err == nil {
		s.publish(true, nil)
		return
	}
	if ctx.Err() != nil {
		return
	}

	s.logger.Warn("backend heartbeat failed, reconnecting", "error", err)
	if rerr := s.reconnect(ctx, TriggerHeartbeat); rerr != nil {
		s.logger.Warn("heartbeat reconnect failed", "error", rerr)
		return
	}
	s.logger.Info("backend session restored by heartbeat")
}

// EnsureConnected returns nil if the session is up. Otherwise it makes one
// synchronous reconnect attempt, shared with any concurrent callers, and
// returns a *ConnectionError if that fails.
func (s *Supervisor) EnsureConnected(ctx context.Context) error {
	if s.client.IsConnected() {
		if !s.state.Load().Connected {
			s.publish(true, nil)
		}
		return nil
	}

	if err := s.reconnect(ctx, TriggerRequest); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ConnectionError{Trigger: TriggerRequest, Cause: err}
	}
	return nil
}

// Client ensures the session is up and returns the backend handle.
func (s *Supervisor) Client(ctx context.Context) (backend.Client, error) {
	if err := s.EnsureConnected(ctx); err != nil {
		return nil, err
	}
	return s.state.Load().Client, nil
}

// State returns the current snapshot.
func (s *Supervisor) State() State {
	return *s.state.Load()
}

// Ready reports whether the last check found the session connected.
func (s *Supervisor) Ready() bool {
	return s.state.Load().Connected
}

// HealthCheck implements health.CheckFunc for the readiness endpoint.
func (s *Supervisor) HealthCheck(ctx context.Context) error {
	st := s.state.Load()
	if st.Connected {
		return nil
	}
	if st.LastError != nil {
		return fmt.Errorf("%w: %v", ErrNotReady, st.LastError)
	}
	return ErrNotReady
}

// reconnect runs a single Connect. Concurrent callers share one attempt,
// which is detached from any one caller's cancellation so a departing
// request cannot abort it for the others.
func (s *Supervisor) reconnect(ctx context.Context, trigger string) error {
	ch := s.group.DoChan("connect", func() (any, error) {
		// A flight that began just after another one finished finds the
		// session already restored.
		if s.client.IsConnected() {
			s.publish(true, nil)
			return nil, nil
		}

		connectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ConnectTimeout)
		defer cancel()

		start := time.Now()
		err := s.client.Connect(connectCtx)
		s.publish(err == nil, err)
		s.metrics.RecordReconnect(trigger, err == nil)

		s.logger.Debug("backend connect attempt",
			"trigger", trigger,
			"success", err == nil,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (s *Supervisor) publish(connected bool, err error) {
	s.state.Store(&State{
		Client:    s.client,
		Connected: connected,
		LastCheck: time.Now(),
		LastError: err,
	})
	s.metrics.SetSessionConnected(connected)
}

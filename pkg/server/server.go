package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/handlers"
	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/middleware"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/health"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/metrics"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/tracing"

	"github.com/gorilla/mux"
)

// Route labels for endpoints outside the media API.
const (
	routeHealth  = "health"
	routeReady   = "ready"
	routeVersion = "version"
	routeMetrics = "metrics"
	routeStatic  = "static"
)

// BuildInfo is reported by the version endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Deps are the components the server routes to. Health, Metrics and
// Tracer may be nil.
type Deps struct {
	Media    handlers.MediaDeps
	Captions handlers.Captioner
	Health   *health.Checker
	Metrics  *metrics.Collector
	Tracer   *tracing.Tracer
	Build    BuildInfo
}

// Server is the HTTP server of the relay.
type Server struct {
	config       *config.Config
	deps         Deps
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	addr         net.Addr
	logger       *slog.Logger
}

// NewServer creates a server for cfg.
func NewServer(cfg *config.Config, deps Deps) *Server {
	return &Server{
		config: cfg,
		deps:   deps,
		logger: slog.Default().With("component", "server"),
	}
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Proxy.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Proxy.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or the server fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		ln.Close()
		return errors.New("server is already running")
	}
	s.isRunning = true
	s.addr = ln.Addr()

	pc := s.config.Proxy
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    pc.ReadTimeout,
		WriteTimeout:   pc.WriteTimeout,
		IdleTimeout:    pc.IdleTimeout,
		MaxHeaderBytes: pc.MaxHeaderBytes,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting media relay", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown stops accepting connections and waits up to ShutdownTimeout
// for in-flight requests. Streams still running after that are cut.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		srv := s.httpServer
		running := s.isRunning
		s.mu.RUnlock()
		if !running || srv == nil {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Proxy.ShutdownTimeout.String())

		shutdownCtx := ctx
		if s.config.Proxy.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, s.config.Proxy.ShutdownTimeout)
			defer cancel()
		}

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("graceful shutdown incomplete, closing remaining streams", "error", err)
			srv.Close()
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("media relay stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the listening address once Serve has started.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.setupRoutes()

	handler = middleware.CORSMiddleware(s.config.Proxy.CORS)(handler)
	handler = middleware.ReferrerPolicyMiddleware(s.config.Proxy.ReferrerPolicy)(handler)
	handler = tracing.HTTPMiddleware(s.deps.Tracer)(handler)
	handler = middleware.LoggingMiddleware(s.deps.Metrics)(handler)
	handler = middleware.RequestIDMiddleware(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = labeled(middleware.UnmatchedRoute, handlers.NotFoundHandler{})
	r.MethodNotAllowedHandler = handlers.MethodNotAllowedHandler{}

	media := []string{http.MethodGet, http.MethodHead}
	r.Handle(handlers.Video.Route, handlers.NewMediaHandler(handlers.Video, s.deps.Media)).Methods(media...)
	r.Handle(handlers.PDF.Route, handlers.NewMediaHandler(handlers.PDF, s.deps.Media)).Methods(media...)

	meta := handlers.NewMetaHandler(s.deps.Media.Resolver, s.deps.Captions, s.config.Meta, s.deps.Metrics)
	r.Handle(handlers.MetaRoute, middleware.TimeoutMiddleware(s.config.Backend.Timeout)(meta)).Methods(http.MethodGet)

	hc := s.config.Telemetry.Health
	if hc.Enabled && s.deps.Health != nil {
		r.Handle(hc.LivenessPath, labeled(routeHealth, s.deps.Health.LivenessHandler())).Methods(media...)
		r.Handle(hc.ReadinessPath, labeled(routeReady, s.deps.Health.ReadinessHandler())).Methods(media...)
		b := s.deps.Build
		r.Handle(hc.VersionPath, labeled(routeVersion, health.VersionHandler(b.Version, b.Commit, b.BuildTime))).Methods(media...)
	}

	mc := s.config.Telemetry.Metrics
	if mc.Enabled && s.deps.Metrics != nil {
		r.Handle(mc.Path, labeled(routeMetrics, s.deps.Metrics.Handler())).Methods(http.MethodGet)
	}

	if dir := s.config.Proxy.StaticDir; dir != "" {
		r.PathPrefix("/").Handler(labeled(routeStatic, http.FileServer(http.Dir(dir)))).Methods(media...)
	}

	return r
}

// labeled sets the route label for endpoints that do not set one
// themselves.
func labeled(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.SetRoute(r.Context(), route)
		next.ServeHTTP(w, r)
	})
}

// Package server provides the HTTP server of the media relay.
//
// The server ties together the API handlers, the telemetry endpoints and
// the middleware chain, and manages graceful shutdown.
//
// # Routes
//
//	GET|HEAD /api/video/{id}   video stream
//	GET|HEAD /api/pdf/{id}     document stream
//	GET      /api/meta/{id}    caption text
//	GET      /health           liveness (path configurable)
//	GET      /ready            readiness, fails while the backend is down
//	GET      /version          build information
//	GET      /metrics          Prometheus exposition
//	GET      /*                static directory, when proxy.static_dir is set
//
// Anything else gets a JSON 404.
//
// # Middleware
//
// From the outside in: panic recovery, request ID, access logging and
// request metrics, tracing, Referrer-Policy, CORS. The caption route also
// carries a context deadline of backend.timeout. Media routes have no
// deadline; slow clients are bounded by transfer.stall_timeout.
//
// # Basic Usage
//
//	srv := server.NewServer(cfg, server.Deps{
//	    Media:    handlers.MediaDeps{Resolver: res, Locator: loc, Sessions: sup, Engine: engine},
//	    Captions: loc,
//	    Health:   checker,
//	    Metrics:  collector,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until ctx is cancelled, then drains in-flight requests for
// up to proxy.shutdown_timeout.
package server

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Meijaisharma/PathshalaPro/pkg/proxy"
	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/middleware"
	"github.com/Meijaisharma/PathshalaPro/pkg/ranges"
	"github.com/Meijaisharma/PathshalaPro/pkg/resolver"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/logging"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/metrics"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/tracing"
	"github.com/Meijaisharma/PathshalaPro/pkg/transfer"

	"github.com/gorilla/mux"
)

// MediaKind describes one media route.
type MediaKind struct {
	// Name is a short label used in logs ("video", "pdf").
	Name string

	// Route is the route template, used as the metrics label.
	Route string

	// ContentType is sent with every successful response.
	ContentType string

	// Disposition returns the Content-Disposition value for a resolved
	// message ID. Nil means no header.
	Disposition func(messageID int64) string
}

// Media kinds served by the relay.
var (
	Video = MediaKind{
		Name:        "video",
		Route:       "/api/video/{id}",
		ContentType: "video/mp4",
	}

	PDF = MediaKind{
		Name:        "pdf",
		Route:       "/api/pdf/{id}",
		ContentType: "application/pdf",
		Disposition: func(messageID int64) string {
			return `inline; filename="Note_` + strconv.FormatInt(messageID, 10) + `.pdf"`
		},
	}
)

// MediaDeps are the collaborators of a MediaHandler. Metrics and Recorder
// may be nil.
type MediaDeps struct {
	Resolver *resolver.Resolver
	Locator  Describer
	Sessions Sessions
	Engine   *transfer.Engine
	Metrics  *metrics.Collector
	Recorder Recorder
}

// MediaHandler serves GET and HEAD for one media kind with byte-range
// support.
type MediaHandler struct {
	kind    MediaKind
	deps    MediaDeps
	contain *proxy.Containment
	logger  *slog.Logger
}

// NewMediaHandler creates a handler for kind.
func NewMediaHandler(kind MediaKind, deps MediaDeps) *MediaHandler {
	return &MediaHandler{
		kind:    kind,
		deps:    deps,
		contain: proxy.NewContainment(deps.Metrics),
		logger:  slog.Default().With("component", "handlers."+kind.Name),
	}
}

// ServeHTTP resolves the identifier, locates the media, negotiates the
// range and streams the window. Failures go through fault containment.
func (h *MediaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := h.kind.Route
	middleware.SetRoute(r.Context(), route)

	meta := proxy.ExtractPlaybackMetadata(r, route)
	defer h.record(r, meta)

	req, err := proxy.ParseMediaRequest(r, mux.Vars(r)["id"], h.deps.Resolver)
	if err != nil {
		h.fail(w, r, meta, nil, transfer.Result{}, err)
		return
	}
	meta.SetContent(req)

	ctx := logging.WithContent(r.Context(), req.ClientID, req.MessageID)
	r = r.WithContext(ctx)
	span := tracing.SpanFromContext(ctx)
	tracing.SetContentAttributes(span, req.ClientID, req.MessageID)

	media, err := h.deps.Locator.Describe(ctx, req.MessageID)
	if err != nil {
		h.fail(w, r, meta, nil, transfer.Result{}, err)
		return
	}
	tracing.SetMediaAttributes(span, media.Size, h.kind.ContentType)

	decision := ranges.Negotiate(r.Header.Get("Range"), media.Size, req.IsHead)
	meta.SetWindow(decision)
	tracing.SetRangeAttributes(span, decision.Start, decision.End, decision.Status)

	hdr := w.Header()
	hdr.Set("Content-Type", h.kind.ContentType)
	if h.kind.Disposition != nil {
		hdr.Set("Content-Disposition", h.kind.Disposition(req.MessageID))
	}
	decision.Apply(hdr)

	if err := decision.Err(); err != nil {
		h.fail(w, r, meta, nil, transfer.Result{}, err)
		return
	}

	if decision.Head {
		w.WriteHeader(decision.Status)
		meta.Complete(decision.Status, transfer.Result{}, transfer.OutcomeComplete)
		h.logger.DebugContext(ctx, "served size probe", "size", media.Size)
		return
	}

	client, err := h.deps.Sessions.Client(ctx)
	if err != nil {
		h.fail(w, r, meta, nil, transfer.Result{}, err)
		return
	}

	sink := h.deps.Engine.NewSink(w, decision.Status)
	h.deps.Metrics.StreamStarted(route)
	res, err := h.deps.Engine.Transfer(ctx, client, media, decision.Start, decision.Length, sink)
	outcome := res.Outcome(err)
	h.deps.Metrics.StreamFinished(route, string(res.Strategy), outcome, res.BytesWritten, res.Duration)

	if err != nil {
		h.fail(w, r, meta, sink, res, err)
		return
	}
	meta.Complete(decision.Status, res, outcome)

	h.logger.DebugContext(ctx, "stream finished",
		"status", decision.Status,
		"bytes", res.BytesWritten,
		"length", decision.Length,
		"outcome", outcome,
		"strategy", res.Strategy,
		"duration_ms", res.Duration.Milliseconds(),
	)
}

func (h *MediaHandler) fail(w http.ResponseWriter, r *http.Request, meta *proxy.PlaybackMetadata, sink *transfer.Sink, res transfer.Result, err error) {
	var committer proxy.Committer
	if sink != nil {
		committer = sink
	}
	fault := h.contain.Contain(w, r, h.kind.Route, committer, err)
	meta.Fail(fault, committer != nil && committer.Committed(), res, err)
}

func (h *MediaHandler) record(r *http.Request, meta *proxy.PlaybackMetadata) {
	if h.deps.Recorder == nil {
		return
	}
	if err := h.deps.Recorder.Record(r.Context(), meta.Record()); err != nil {
		h.logger.WarnContext(r.Context(), "playback record dropped", "error", err)
	}
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/proxy"
	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/middleware"
	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/types"
	"github.com/Meijaisharma/PathshalaPro/pkg/resolver"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/logging"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MetaRoute is the route template of the caption endpoint.
const MetaRoute = "/api/meta/{id}"

const captionCache = "captions"

// MetaHandler answers caption lookups. It never fails: any error yields
// the fallback text with status 200.
//
// Captions are cached by resolved message ID. Media descriptors are never
// cached because their file references expire.
type MetaHandler struct {
	resolver *resolver.Resolver
	captions Captioner
	cache    *expirable.LRU[int64, string]
	metrics  *metrics.Collector
	cfg      config.MetaConfig
	logger   *slog.Logger
}

// NewMetaHandler creates the caption handler. A CacheSize below 1
// disables the cache. collector may be nil.
func NewMetaHandler(res *resolver.Resolver, captions Captioner, cfg config.MetaConfig, collector *metrics.Collector) *MetaHandler {
	h := &MetaHandler{
		resolver: res,
		captions: captions,
		metrics:  collector,
		cfg:      cfg,
		logger:   slog.Default().With("component", "handlers.meta"),
	}
	if cfg.CacheSize > 0 {
		h.cache = expirable.NewLRU[int64, string](cfg.CacheSize, func(int64, string) {
			collector.RecordCacheEviction(captionCache)
		}, cfg.CacheTTL)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *MetaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	middleware.SetRoute(ctx, MetaRoute)

	text := h.lookup(r)
	if err := proxy.WriteJSONResponse(w, http.StatusOK, types.MetaResponse{Text: text}); err != nil {
		h.logger.DebugContext(ctx, "failed to write caption", "error", err)
	}
}

func (h *MetaHandler) lookup(r *http.Request) string {
	clientID, messageID, err := h.resolver.ParseAndResolve(mux.Vars(r)["id"])
	if err != nil {
		h.logger.DebugContext(r.Context(), "bad caption identifier", "error", err)
		return h.cfg.FallbackText
	}
	ctx := logging.WithContent(r.Context(), clientID, messageID)

	if h.cache != nil {
		if text, ok := h.cache.Get(messageID); ok {
			h.metrics.RecordCacheHit(captionCache)
			return text
		}
		h.metrics.RecordCacheMiss(captionCache)
	}

	caption, err := h.captions.Caption(ctx, messageID)
	if err != nil {
		h.logger.WarnContext(ctx, "caption lookup failed", "error", err)
		return h.cfg.FallbackText
	}

	text := caption
	if text == "" {
		text = h.cfg.DefaultText
	}
	if h.cache != nil {
		h.cache.Add(messageID, text)
		h.metrics.UpdateCacheSize(captionCache, h.cache.Len())
	}
	return text
}

package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/locator"
	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/types"
	"github.com/Meijaisharma/PathshalaPro/pkg/resolver"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/metrics"
	"github.com/Meijaisharma/PathshalaPro/pkg/transfer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type committer bool

func (c committer) Committed() bool { return bool(c) }

func testCollector() *metrics.Collector {
	return metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, prometheus.NewRegistry())
}

func TestContain_BeforeCommit(t *testing.T) {
	c := NewContainment(testCollector())

	rec := httptest.NewRecorder()
	rec.Header().Set("Content-Length", "1000")
	rec.Header().Set("Content-Disposition", `inline; filename="Note_1.pdf"`)
	req := httptest.NewRequest(http.MethodGet, "/api/pdf/1", nil)

	f := c.Contain(rec, req, "/api/pdf/{id}", committer(false), locator.ErrNotFound)

	if f.Status != http.StatusNotFound || rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d (fault %d), want 404", rec.Code, f.Status)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("Content-Disposition") != "" {
		t.Error("media headers should be dropped from error responses")
	}

	var body types.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Error.Code != types.CodeContentNotFound {
		t.Errorf("code = %q", body.Error.Code)
	}
}

func TestContain_NilSink(t *testing.T) {
	c := NewContainment(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/video/x", nil)

	c.Contain(rec, req, "/api/video/{id}", nil, resolver.ErrBadIdentifier)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestContain_AfterCommit(t *testing.T) {
	collector := testCollector()
	c := NewContainment(collector)

	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusPartialContent)
	_, _ = rec.Write([]byte("partial"))
	req := httptest.NewRequest(http.MethodGet, "/api/video/1", nil)

	err := &transfer.TransferError{Op: "backend", Committed: true, Cause: errors.New("reset")}
	f := c.Contain(rec, req, "/api/video/{id}", committer(true), err)

	if f.Status != http.StatusBadGateway {
		t.Errorf("fault status = %d, want 502", f.Status)
	}
	if rec.Code != http.StatusPartialContent {
		t.Errorf("status changed to %d after commit", rec.Code)
	}
	if rec.Body.String() != "partial" {
		t.Errorf("body = %q, nothing may be appended after commit", rec.Body.String())
	}

	count, gatherErr := testutil.GatherAndCount(collector.Registry(), "test_relay_mid_stream_aborts_total")
	if gatherErr != nil {
		t.Fatalf("gather: %v", gatherErr)
	}
	if count != 1 {
		t.Errorf("abort series = %d, want 1", count)
	}
}

func TestContain_ClientAlreadyGone(t *testing.T) {
	c := NewContainment(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/video/1", nil).WithContext(ctx)

	c.Contain(rec, req, "/api/video/{id}", nil, ctx.Err())
	if rec.Body.Len() != 0 {
		t.Errorf("wrote %q to a cancelled request", rec.Body.String())
	}
}

func TestParseMediaRequest(t *testing.T) {
	res, err := resolver.New(120, 3, 7)
	if err != nil {
		t.Fatalf("resolver.New: %v", err)
	}

	head := httptest.NewRequest(http.MethodHead, "/api/video/121", nil)
	got, err := ParseMediaRequest(head, "121", res)
	if err != nil {
		t.Fatalf("ParseMediaRequest: %v", err)
	}
	if got.ClientID != 121 || got.MessageID != 128 || !got.IsHead {
		t.Errorf("got %+v", got)
	}

	get := httptest.NewRequest(http.MethodGet, "/api/video/abc", nil)
	if _, err := ParseMediaRequest(get, "abc", res); !errors.Is(err, resolver.ErrBadIdentifier) {
		t.Errorf("expected ErrBadIdentifier, got %v", err)
	}
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/backend/memory"
	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
	"github.com/Meijaisharma/PathshalaPro/pkg/locator"
	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/types"
	"github.com/Meijaisharma/PathshalaPro/pkg/resolver"
	"github.com/Meijaisharma/PathshalaPro/pkg/retry"
	"github.com/Meijaisharma/PathshalaPro/pkg/session"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/metrics"
	"github.com/Meijaisharma/PathshalaPro/pkg/transfer"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const (
	testSource = "lectures"
	fileSize   = 20000
)

// Client ID 5 resolves to message 8, 6 to 9 (threshold 120, low offset 3).
const (
	videoID   = "5"
	videoMsg  = 8
	captionID = "6"
)

type memRecorder struct {
	mu      sync.Mutex
	records []*ledger.Record
}

func (m *memRecorder) Record(_ context.Context, r *ledger.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memRecorder) last(t *testing.T) *ledger.Record {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) == 0 {
		t.Fatal("no playback record written")
	}
	return m.records[len(m.records)-1]
}

type fixture struct {
	backend  *memory.Backend
	content  []byte
	router   *mux.Router
	recorder *memRecorder
	metrics  *metrics.Collector
	locator  *locator.Locator
	resolver *resolver.Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	content := make([]byte, fileSize)
	for i := range content {
		content[i] = byte(i % 251)
	}

	mem := memory.New()
	mem.AddMedia(testSource, videoMsg, "Optics part 1", content, "video/mp4")

	sup := session.NewSupervisor(mem, session.Config{HeartbeatInterval: time.Hour, ConnectTimeout: time.Second})
	sup.Start(context.Background())
	t.Cleanup(sup.Stop)

	res, err := resolver.New(120, 3, 7)
	if err != nil {
		t.Fatal(err)
	}
	loc := locator.New(sup, testSource, retry.Policy{MaxAttempts: 2, Delay: time.Millisecond})
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test", Subsystem: "relay"}, prometheus.NewRegistry())
	rec := &memRecorder{}

	deps := MediaDeps{
		Resolver: res,
		Locator:  loc,
		Sessions: sup,
		Engine:   transfer.NewEngine(transfer.Options{Strategy: transfer.StrategyChunked, ChunkSize: 4096}),
		Metrics:  collector,
		Recorder: rec,
	}

	router := mux.NewRouter()
	router.Handle(Video.Route, NewMediaHandler(Video, deps)).Methods(http.MethodGet, http.MethodHead)
	router.Handle(PDF.Route, NewMediaHandler(PDF, deps)).Methods(http.MethodGet, http.MethodHead)

	return &fixture{
		backend:  mem,
		content:  content,
		router:   router,
		recorder: rec,
		metrics:  collector,
		locator:  loc,
		resolver: res,
	}
}

func (f *fixture) do(method, path, rangeHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, body []byte) types.ErrorDetail {
	t.Helper()
	var resp types.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("body is not an error envelope: %v (%q)", err, body)
	}
	return resp.Error
}

func TestMediaHandler_Ranges(t *testing.T) {
	tests := []struct {
		name         string
		rangeHeader  string
		wantStatus   int
		wantStart    int
		wantEnd      int
		contentRange string
	}{
		{name: "no range", wantStatus: 200, wantStart: 0, wantEnd: fileSize - 1},
		{name: "closed range", rangeHeader: "bytes=200-499", wantStatus: 206, wantStart: 200, wantEnd: 499, contentRange: "bytes 200-499/20000"},
		{name: "open range", rangeHeader: "bytes=19000-", wantStatus: 206, wantStart: 19000, wantEnd: fileSize - 1, contentRange: "bytes 19000-19999/20000"},
		{name: "suffix range", rangeHeader: "bytes=-100", wantStatus: 206, wantStart: 19900, wantEnd: fileSize - 1, contentRange: "bytes 19900-19999/20000"},
		{name: "end clamped", rangeHeader: "bytes=100-999999", wantStatus: 206, wantStart: 100, wantEnd: fileSize - 1, contentRange: "bytes 100-19999/20000"},
		{name: "malformed falls back", rangeHeader: "bytes=abc", wantStatus: 200, wantStart: 0, wantEnd: fileSize - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(http.MethodGet, "/api/video/"+videoID, tt.rangeHeader)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
				t.Errorf("Content-Type = %q", got)
			}
			if got := rec.Header().Get("Accept-Ranges"); got != "bytes" {
				t.Errorf("Accept-Ranges = %q", got)
			}
			if got := rec.Header().Get("Content-Range"); got != tt.contentRange {
				t.Errorf("Content-Range = %q, want %q", got, tt.contentRange)
			}

			want := f.content[tt.wantStart : tt.wantEnd+1]
			if !bytes.Equal(rec.Body.Bytes(), want) {
				t.Errorf("body: got %d bytes, want %d", rec.Body.Len(), len(want))
			}

			r := f.recorder.last(t)
			if r.Outcome != ledger.OutcomeComplete || r.BytesSent != int64(len(want)) || r.Status != tt.wantStatus {
				t.Errorf("record = %+v", r)
			}
			if r.ClientID != 5 || r.MessageID != videoMsg || r.Route != Video.Route {
				t.Errorf("record identity = %+v", r)
			}
		})
	}
}

func TestMediaHandler_Head(t *testing.T) {
	f := newFixture(t)
	reads := f.backend.ReadCalls()

	rec := f.do(http.MethodHead, "/api/video/"+videoID, "bytes=0-10")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Length"); got != "20000" {
		t.Errorf("Content-Length = %q, want 20000", got)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD body has %d bytes", rec.Body.Len())
	}
	if f.backend.ReadCalls() != reads {
		t.Error("HEAD must not download any part")
	}
}

func TestMediaHandler_PDFDisposition(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/pdf/"+videoID, "bytes=0-99")

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `inline; filename="Note_8.pdf"` {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestMediaHandler_Errors(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		rangeHeader string
		setup       func(*memory.Backend)
		wantStatus  int
		wantCode    string
	}{
		{name: "bad identifier", path: "/api/video/abc", wantStatus: 400, wantCode: types.CodeBadIdentifier},
		{name: "negative identifier", path: "/api/video/-1", wantStatus: 400, wantCode: types.CodeBadIdentifier},
		{name: "not found", path: "/api/video/" + captionID, wantStatus: 404, wantCode: types.CodeContentNotFound},
		{name: "range past end", path: "/api/video/" + videoID, rangeHeader: "bytes=20000-", wantStatus: 416, wantCode: types.CodeRangeNotSatisfiable},
		{
			name:       "backend down",
			path:       "/api/video/" + videoID,
			setup:      func(b *memory.Backend) { b.SetReachable(false) },
			wantStatus: 502,
			wantCode:   types.CodeBackendUnavailable,
		},
		{
			name:       "first part fails",
			path:       "/api/video/" + videoID,
			setup:      func(b *memory.Backend) { b.FailReadsFrom(0) },
			wantStatus: 502,
			wantCode:   types.CodeTransferFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f.backend)
			}

			rec := f.do(http.MethodGet, tt.path, tt.rangeHeader)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q", got)
			}
			if detail := decodeError(t, rec.Body.Bytes()); detail.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", detail.Code, tt.wantCode)
			}
			if rec.Header().Get("Content-Disposition") != "" || rec.Header().Get("Content-Length") != "" {
				t.Error("media headers leaked into error response")
			}

			r := f.recorder.last(t)
			if r.Outcome != ledger.OutcomeRejected || r.Status != tt.wantStatus {
				t.Errorf("record = %+v", r)
			}
		})
	}
}

func TestMediaHandler_UnsatisfiableKeepsContentRange(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/video/"+videoID, "bytes=50000-")

	if got := rec.Header().Get("Content-Range"); got != "bytes */20000" {
		t.Errorf("Content-Range = %q, want bytes */20000", got)
	}
}

func TestMediaHandler_MidStreamFailure(t *testing.T) {
	f := newFixture(t)
	f.backend.FailReadsFrom(8192)

	rec := f.do(http.MethodGet, "/api/video/"+videoID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want committed 200", rec.Code)
	}
	if rec.Body.Len() != 8192 {
		t.Errorf("body = %d bytes, want 8192", rec.Body.Len())
	}
	if !bytes.Equal(rec.Body.Bytes(), f.content[:8192]) {
		t.Error("delivered prefix is corrupted")
	}
	if bytes.Contains(rec.Body.Bytes(), []byte(`"error"`)) {
		t.Error("error envelope written into media body")
	}

	r := f.recorder.last(t)
	if r.Outcome != ledger.OutcomeAborted || r.Status != 200 || r.BytesSent != 8192 || r.Error == "" {
		t.Errorf("record = %+v", r)
	}

	n, err := testutil.GatherAndCount(f.metrics.Registry(), "test_relay_mid_stream_aborts_total")
	if err != nil || n != 1 {
		t.Errorf("abort series = %d, %v; want 1", n, err)
	}
}

func TestMediaHandler_ClientGone(t *testing.T) {
	f := newFixture(t)
	f.backend.SetPartDelay(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/video/"+videoID, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	time.AfterFunc(30*time.Millisecond, cancel)
	f.router.ServeHTTP(rec, req)

	r := f.recorder.last(t)
	if r.Outcome != ledger.OutcomeClientGone {
		t.Errorf("outcome = %s, want client_gone", r.Outcome)
	}
	if r.BytesSent >= fileSize {
		t.Errorf("BytesSent = %d, expected a truncated transfer", r.BytesSent)
	}
}

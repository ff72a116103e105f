package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
)

func sampleRecords() []*ledger.Record {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []*ledger.Record{
		{
			ID: "a", RequestID: "req-a", RequestTime: at, RecordedTime: at,
			Route: "/api/video/{id}", Method: "GET", ClientID: 5, MessageID: 8,
			RangeStart: 0, RangeEnd: 99, TotalSize: 1000, Status: 206,
			BytesSent: 100, Strategy: "chunked", Outcome: ledger.OutcomeComplete,
			Duration: 1500 * time.Millisecond,
		},
		{
			ID: "b", RequestID: "req-b", RequestTime: at, RecordedTime: at,
			Route: "/api/pdf/{id}", Method: "GET", ClientID: 6, MessageID: 9,
			RangeStart: -1, RangeEnd: -1, Status: 404, Outcome: ledger.OutcomeRejected,
			Error: `lookup "x", failed`,
		},
	}
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(false).Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatal(err)
	}

	var got []ledger.Record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(got) != 2 || got[1].Error != `lookup "x", failed` {
		t.Errorf("unexpected records: %+v", got)
	}
}

func TestJSONExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(true).Export(context.Background(), nil, &buf); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("got %q, want []", buf.String())
	}
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(true).Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != "id" || len(rows[0]) != len(rows[1]) {
		t.Errorf("bad header: %v", rows[0])
	}
	if rows[1][16] != "1500" {
		t.Errorf("duration_ms = %q, want 1500", rows[1][16])
	}
	if rows[2][17] != `lookup "x", failed` {
		t.Errorf("error field = %q", rows[2][17])
	}
}

func TestCSVExporter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewCSVExporter(false).Export(ctx, sampleRecords(), &bytes.Buffer{})
	var ee *ledger.ExportError
	if !errors.As(err, &ee) || ee.Format != "csv" {
		t.Fatalf("expected csv ExportError, got %v", err)
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "csv"} {
		if _, err := New(format); err != nil {
			t.Errorf("New(%q): %v", format, err)
		}
	}
	if _, err := New("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

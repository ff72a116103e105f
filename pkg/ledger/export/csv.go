package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
)

// CSVExporter exports ledger records to CSV, one row per record.
type CSVExporter struct {
	// IncludeHeader writes a header row before the records.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

var csvHeader = []string{
	"id", "request_id", "request_time", "recorded_time",
	"route", "method", "remote_addr", "client_id", "message_id",
	"range_start", "range_end", "total_size",
	"status", "bytes_sent", "strategy", "outcome", "duration_ms", "error",
}

// Export writes records to w.
func (e *CSVExporter) Export(ctx context.Context, records []*ledger.Record, w io.Writer) error {
	cw := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := cw.Write(csvHeader); err != nil {
			return ledger.NewExportError("csv", 0, err)
		}
	}

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return ledger.NewExportError("csv", i, err)
		}
		if err := cw.Write(recordToRow(record)); err != nil {
			return ledger.NewExportError("csv", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return ledger.NewExportError("csv", len(records), err)
	}
	return nil
}

func recordToRow(r *ledger.Record) []string {
	return []string{
		r.ID,
		r.RequestID,
		r.RequestTime.UTC().Format(time.RFC3339Nano),
		r.RecordedTime.UTC().Format(time.RFC3339Nano),
		r.Route,
		r.Method,
		r.RemoteAddr,
		strconv.FormatInt(r.ClientID, 10),
		strconv.FormatInt(r.MessageID, 10),
		strconv.FormatInt(r.RangeStart, 10),
		strconv.FormatInt(r.RangeEnd, 10),
		strconv.FormatInt(r.TotalSize, 10),
		strconv.Itoa(r.Status),
		strconv.FormatInt(r.BytesSent, 10),
		r.Strategy,
		r.Outcome,
		strconv.FormatInt(r.Duration.Milliseconds(), 10),
		r.Error,
	}
}

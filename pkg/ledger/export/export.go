// Package export writes ledger records in JSON or CSV form for offline
// analysis.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
)

// Exporter writes a batch of records to w.
type Exporter interface {
	Export(ctx context.Context, records []*ledger.Record, w io.Writer) error
}

// New returns the exporter for format ("json" or "csv").
func New(format string) (Exporter, error) {
	switch format {
	case "json":
		return NewJSONExporter(true), nil
	case "csv":
		return NewCSVExporter(true), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (must be json or csv)", format)
	}
}

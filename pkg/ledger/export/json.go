package export

import (
	"context"
	"encoding/json"
	"io"

	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
)

// JSONExporter exports ledger records as a JSON array.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// Export writes records to w. An empty input produces "[]".
func (e *JSONExporter) Export(ctx context.Context, records []*ledger.Record, w io.Writer) error {
	if records == nil {
		records = []*ledger.Record{}
	}
	if err := ctx.Err(); err != nil {
		return ledger.NewExportError("json", 0, err)
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return ledger.NewExportError("json", len(records), err)
	}
	return nil
}

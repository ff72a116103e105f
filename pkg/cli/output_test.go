package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "JSON", want: FormatJSON},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewFormatter(FormatText).FormatTo(buf, "test message"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "test message\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestTable_Text(t *testing.T) {
	table := &Table{Headers: []string{"client_id", "message_id"}}
	table.AddRow("5", "8")
	table.AddRow("121", "128")

	buf := &bytes.Buffer{}
	if err := NewFormatter(FormatText).FormatTo(buf, table); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "client_id") || !strings.Contains(lines[2], "128") {
		t.Errorf("unexpected table:\n%s", buf.String())
	}
	// Columns are aligned.
	if strings.Index(lines[0], "message_id") != strings.Index(lines[1], "8") {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestTable_JSON(t *testing.T) {
	table := &Table{Headers: []string{"client_id", "message_id"}}
	table.AddRow("5", "8")
	table.AddRow("6")

	buf := &bytes.Buffer{}
	if err := NewFormatter(FormatJSON).FormatTo(buf, table); err != nil {
		t.Fatal(err)
	}

	var rows []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0]["message_id"] != "8" {
		t.Errorf("row 0 = %v", rows[0])
	}
	if v, ok := rows[1]["message_id"]; !ok || v != "" {
		t.Errorf("short row should be padded, got %v", rows[1])
	}
}

func TestTable_EmptyJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewFormatter(FormatJSON).FormatTo(buf, &Table{Headers: []string{"a"}}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("got %q, want []", buf.String())
	}
}

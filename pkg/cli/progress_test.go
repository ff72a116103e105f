package cli

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestSimpleProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(4096)
	progress.Update(2048)
	progress.Finish()

	output := buf.String()
	if !strings.Contains(output, "Progress:") {
		t.Error("Expected progress output to contain 'Progress:'")
	}
	if !strings.Contains(output, "100.0%") {
		t.Errorf("Expected finished progress at 100%%, got %q", output)
	}
	if !strings.Contains(output, "4.0 KiB") {
		t.Errorf("Expected byte totals in output, got %q", output)
	}
}

func TestSimpleProgressZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if strings.Contains(buf.String(), "Progress:") {
		t.Errorf("zero total should not render a bar, got %q", buf.String())
	}
}

func TestSimpleProgressError(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(100)
	progress.Error(errors.New("backend unavailable"))

	if !strings.Contains(buf.String(), "Error: backend unavailable") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

type countingReporter struct {
	updates []int64
}

func (c *countingReporter) Start(int64)    {}
func (c *countingReporter) Update(n int64) { c.updates = append(c.updates, n) }
func (c *countingReporter) Finish()        {}
func (c *countingReporter) Error(error)    {}

func TestProgressWriter(t *testing.T) {
	out := &bytes.Buffer{}
	reporter := &countingReporter{}
	pw := NewProgressWriter(out, reporter)

	var w http.ResponseWriter = pw
	w.Header().Set("Content-Type", "video/mp4")
	w.WriteHeader(http.StatusPartialContent)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("abc"))
	w.Write([]byte("defg"))

	if pw.Status() != http.StatusPartialContent {
		t.Errorf("Status() = %d, want 206", pw.Status())
	}
	if pw.Written() != 7 || out.String() != "abcdefg" {
		t.Errorf("written %d %q", pw.Written(), out.String())
	}
	if len(reporter.updates) != 2 || reporter.updates[1] != 7 {
		t.Errorf("updates = %v, want [3 7]", reporter.updates)
	}
	if pw.Header().Get("Content-Type") != "video/mp4" {
		t.Error("header not kept")
	}
}

func TestProgressWriter_ImplicitStatus(t *testing.T) {
	pw := NewProgressWriter(&bytes.Buffer{}, nil)
	pw.Write([]byte("x"))
	if pw.Status() != http.StatusOK {
		t.Errorf("Status() = %d, want 200", pw.Status())
	}
}

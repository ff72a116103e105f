// Package ranges decides which bytes of a media file a request receives
// and with which status line.
//
// Only single byte ranges are honoured. Anything the parser cannot make
// sense of is treated as if no Range header was sent, so clients always get
// a playable response.
package ranges

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrMalformed is returned by Parse for headers that are not a single
	// well-formed byte range. Negotiate recovers from it.
	ErrMalformed = errors.New("malformed range header")

	// ErrUnsatisfiable means the range starts at or beyond the end of the
	// file.
	ErrUnsatisfiable = errors.New("range not satisfiable")
)

// Spec is a parsed byte range. End is -1 when open ended. Suffix ranges
// ("bytes=-N") have Suffix set and Start holding N.
type Spec struct {
	Start  int64
	End    int64
	Suffix bool
}

// Decision is the negotiated response window.
type Decision struct {
	// Status is 200, 206 or 416.
	Status int

	// Start and End are the inclusive window. Both are 0 and Length is 0
	// for an empty file or a 416.
	Start int64
	End   int64

	// Length is the number of body bytes (End-Start+1).
	Length int64

	// Total is the size of the whole file.
	Total int64

	// Partial is true for a 206.
	Partial bool

	// Satisfiable is false for a 416.
	Satisfiable bool

	// Head is true when no body must be sent.
	Head bool
}

// Parse parses a Range header value. An empty header returns (nil, nil).
func Parse(header string) (*Spec, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}

	unit, set, ok := strings.Cut(header, "=")
	if !ok || strings.TrimSpace(unit) != "bytes" {
		return nil, ErrMalformed
	}
	set = strings.TrimSpace(set)
	if strings.Contains(set, ",") {
		return nil, ErrMalformed
	}

	first, last, ok := strings.Cut(set, "-")
	if !ok {
		return nil, ErrMalformed
	}
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)

	if first == "" {
		n, err := parseOffset(last)
		if err != nil || n == 0 {
			return nil, ErrMalformed
		}
		return &Spec{Start: n, End: -1, Suffix: true}, nil
	}

	start, err := parseOffset(first)
	if err != nil {
		return nil, ErrMalformed
	}
	if last == "" {
		return &Spec{Start: start, End: -1}, nil
	}

	end, err := parseOffset(last)
	if err != nil || end < start {
		return nil, ErrMalformed
	}
	return &Spec{Start: start, End: end}, nil
}

func parseOffset(s string) (int64, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, ErrMalformed
	}
	return strconv.ParseInt(s, 10, 64)
}

// Negotiate computes the response for a request with the given Range
// header against a file of total bytes.
//
//   - HEAD: 200 with the full length, never a body.
//   - no header or malformed header: 200 with the full file.
//   - valid range: 206 with the end clamped to the last byte.
//   - start at or beyond the end of the file: 416.
func Negotiate(header string, total int64, isHead bool) Decision {
	full := Decision{
		Status:      http.StatusOK,
		Total:       total,
		Length:      total,
		Satisfiable: true,
		Head:        isHead,
	}
	if total > 0 {
		full.End = total - 1
	}

	if isHead {
		return full
	}

	spec, err := Parse(header)
	if err != nil || spec == nil {
		return full
	}

	start, end := spec.Start, spec.End
	if spec.Suffix {
		start = max(total-spec.Start, 0)
		end = total - 1
	}
	if start >= total {
		return Decision{
			Status: http.StatusRequestedRangeNotSatisfiable,
			Total:  total,
		}
	}
	if end < 0 || end >= total {
		end = total - 1
	}

	return Decision{
		Status:      http.StatusPartialContent,
		Start:       start,
		End:         end,
		Length:      end - start + 1,
		Total:       total,
		Partial:     true,
		Satisfiable: true,
	}
}

// Err returns ErrUnsatisfiable for a 416 decision and nil otherwise.
func (d Decision) Err() error {
	if !d.Satisfiable {
		return ErrUnsatisfiable
	}
	return nil
}

// Apply writes the length and range headers for d.
func (d Decision) Apply(h http.Header) {
	h.Set("Accept-Ranges", "bytes")

	if !d.Satisfiable {
		h.Set("Content-Range", "bytes */"+strconv.FormatInt(d.Total, 10))
		h.Del("Content-Length")
		return
	}

	h.Set("Content-Length", strconv.FormatInt(d.Length, 10))
	if d.Partial {
		h.Set("Content-Range", ContentRange(d.Start, d.End, d.Total))
	}
}

// ContentRange formats a satisfied Content-Range value.
func ContentRange(start, end, total int64) string {
	return "bytes " + strconv.FormatInt(start, 10) + "-" + strconv.FormatInt(end, 10) + "/" + strconv.FormatInt(total, 10)
}

// Package resolver maps the numeric content IDs used in public URLs to
// backend message IDs.
//
// The backend numbering has a gap: messages up to a threshold sit at a
// small fixed offset from their public ID and everything after it at a
// larger one. The mapping is pure and strictly increasing.
package resolver

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrBadIdentifier is returned for negative, non-numeric or out-of-range IDs.
var ErrBadIdentifier = errors.New("bad content identifier")

// Resolver applies the piecewise offset. The zero value is the identity.
type Resolver struct {
	// Threshold is the last client ID mapped with LowOffset.
	Threshold int64

	// LowOffset is added to IDs at or below Threshold.
	LowOffset int64

	// HighOffset is added to IDs above Threshold. Must be >= LowOffset.
	HighOffset int64
}

// New returns a Resolver after checking that the mapping is monotonic.
func New(threshold, low, high int64) (*Resolver, error) {
	if threshold < 0 || low < 0 {
		return nil, fmt.Errorf("resolver: threshold and low offset must be non-negative")
	}
	if high < low {
		return nil, fmt.Errorf("resolver: high offset %d is below low offset %d", high, low)
	}
	return &Resolver{Threshold: threshold, LowOffset: low, HighOffset: high}, nil
}

// Resolve maps a client ID to a backend message ID.
func (r *Resolver) Resolve(clientID int64) (int64, error) {
	if clientID < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrBadIdentifier, clientID)
	}
	offset := r.HighOffset
	if clientID <= r.Threshold {
		offset = r.LowOffset
	}
	if clientID > math.MaxInt64-offset {
		return 0, fmt.Errorf("%w: %d is out of range", ErrBadIdentifier, clientID)
	}
	return clientID + offset, nil
}

// ParseAndResolve parses a decimal path segment and resolves it. Signs,
// whitespace and anything but ASCII digits are rejected.
func (r *Resolver) ParseAndResolve(raw string) (clientID, messageID int64, err error) {
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return 0, 0, fmt.Errorf("%w: %q is not a number", ErrBadIdentifier, raw)
	}
	clientID, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q is out of range", ErrBadIdentifier, raw)
	}
	messageID, err = r.Resolve(clientID)
	return clientID, messageID, err
}

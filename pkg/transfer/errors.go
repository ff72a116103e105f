package transfer

import "fmt"

// TransferError is a failure while moving bytes from the backend to the
// client, other than the client going away.
type TransferError struct {
	// Op is "backend" for read failures and "stall" for a client that
	// stopped draining.
	Op string

	// Offset is the absolute file offset at which the transfer stopped.
	Offset int64

	// Written is the number of body bytes delivered before the failure.
	Written int64

	// Committed reports whether headers had already been sent.
	Committed bool

	Cause error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s failure at offset %d after %d bytes: %v", e.Op, e.Offset, e.Written, e.Cause)
}

func (e *TransferError) Unwrap() error {
	return e.Cause
}

// Package proxy holds the request-level plumbing shared by the relay's HTTP
// handlers: parsing media requests, classifying pipeline errors and writing
// JSON responses.
//
// # Architecture
//
//   - Handlers (subpackage handlers): the /api/video, /api/pdf and /api/meta
//     endpoints
//   - Middleware (subpackage middleware): request ID, access logging,
//     recovery, CORS, Referrer-Policy, timeouts
//   - Types (subpackage types): the JSON error envelope and metadata body
//
// # Fault Containment
//
// Every failure is passed to Containment.Contain together with the
// transfer sink, if one exists. Classify maps the error to a status:
//
//	resolver.ErrBadIdentifier          400 bad_identifier
//	locator.ErrNotFound                404 content_not_found
//	ranges.ErrUnsatisfiable            416 range_not_satisfiable
//	session.ConnectionError            502 backend_unavailable
//	locator.ErrUnavailable             502 backend_unavailable
//	transfer.TransferError             502 transfer_failed
//	anything else                      500 internal_error
//
// Before the sink commits, the client receives the JSON envelope. After
// commit nothing more is written: the body ends short of Content-Length,
// the abort is logged at warn and counted in mid_stream_aborts_total.
//
// # Playback Metadata
//
// PlaybackMetadata collects the identifiers, window, bytes and outcome of
// a media request and converts them into a ledger record when the handler
// returns.
package proxy

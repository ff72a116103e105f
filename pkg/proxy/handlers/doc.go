// Package handlers provides the HTTP handlers of the relay API.
//
// # Handler Types
//
// Media handlers (one MediaHandler per MediaKind):
//   - GET|HEAD /api/video/{id}: video/mp4 with byte-range support
//   - GET|HEAD /api/pdf/{id}: application/pdf, served inline as Note_<id>.pdf
//
// Metadata handler:
//   - GET /api/meta/{id}: {"text": caption}, never fails
//
// Fallbacks:
//   - NotFoundHandler and MethodNotAllowedHandler answer with the JSON
//     error envelope
//
// Health, readiness, version and metrics endpoints live in the telemetry
// packages and are mounted by the server.
//
// # Request Flow
//
// Each media request goes through the same steps:
//
//  1. Resolve the path identifier to a backend message ID
//  2. Locate the media descriptor, retrying transient failures
//  3. Negotiate the Range header against the descriptor's size
//  4. Answer HEAD with headers only
//  5. Stream the window through the transfer engine
//  6. Record the outcome in the playback ledger
//
// # Error Handling
//
// Failures before the first byte produce the JSON error envelope:
//
//	{
//	  "error": {
//	    "message": "Content not found",
//	    "type": "not_found",
//	    "code": "content_not_found"
//	  }
//	}
//
// Once media bytes have been sent the stream is cut short instead; see
// proxy.Containment.
package handlers

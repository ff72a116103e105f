// Package types defines the JSON bodies returned by the relay's API.
//
// Media endpoints answer with raw bytes; JSON only appears for errors raised
// before a stream starts and for the caption endpoint:
//
//	{"error": {"message": "content not found", "type": "not_found", "code": "content_not_found"}}
//
//	{"text": "Week 3: Thermodynamics"}
//
// Error types map onto HTTP status codes through ErrorDetail.HTTPStatusCode.
package types

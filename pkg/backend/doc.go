// Package backend defines the capability surface the relay consumes from the
// messaging backend that stores lecture videos and note PDFs.
//
// A Client exposes four operations: Connect, IsConnected, FetchMessages and
// ReadPart. Everything the relay needs for streaming is built on ReadPart:
//
//   - Stream iterates a byte window chunk by chunk (manual chunked pull).
//   - Copy writes a window into an io.Writer with several parts in flight
//     (bulk pull).
//
// Both request parts at offsets aligned to the chunk size and trim the first
// and last part so that exactly the requested number of bytes is produced.
//
// Implementations live in sub-packages: gateway talks HTTP/JSON to a session
// gateway process, memory serves fixtures from RAM and can inject faults.
package backend

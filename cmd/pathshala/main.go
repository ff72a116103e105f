// Pathshala is a range-streaming media relay for lecture videos and notes
// stored in a messaging backend.
//
// It serves HTTP byte ranges straight out of the backend, providing:
//   - Stable public content IDs mapped onto backend message IDs
//   - Range negotiation with 206/416 semantics for video players
//   - A supervised backend session with heartbeat and lazy reconnect
//   - A playback ledger with retention
//   - Prometheus metrics, OpenTelemetry tracing and health probes
//
// Usage:
//
//	# Start the relay with default configuration
//	pathshala run
//
//	# Start with custom configuration file
//	pathshala run --config /path/to/config.yaml
//
//	# Show which backend message a public ID maps to
//	pathshala resolve 42
//
//	# Pull a file through the transfer engine without a browser
//	pathshala probe 42 --range bytes=0-1048575
//
//	# Query the playback ledger
//	pathshala ledger query --outcome aborted --format json
package main

import "os"

func main() {
	os.Exit(Execute())
}

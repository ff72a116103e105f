// Package logging configures the process-wide slog logger.
//
// The handler installed by New does three things on top of the JSON or text
// handler from log/slog:
//   - adds request_id, client_id, message_id and trace_id from the context
//   - masks session tokens, bearer headers and file references
//   - reads its level from a slog.LevelVar so config reloads apply at once
//
// # Usage
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	logger.SetDefault()
//
//	log := slog.Default().With("component", "transfer")
//	log.InfoContext(ctx, "stream finished", "bytes", n)
package logging

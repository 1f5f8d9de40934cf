// Package logging provides structured logging for wardrive-core.
//
// This package wraps Go's standard log/slog package so every stage of a
// conversion (detection, extraction, normalization, writing) reports
// progress and diagnostics the same way.
//
// # Features
//
//   - Text output for interactive CLI use (human-readable)
//   - JSON output for the API server (machine-parsable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("format detected", "file", path, "format", format)
//	logger.Warn("extraction failed", "error", err)
package logging

// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and integrates with the Fiber web framework.
//
// # Context Awareness
//
// The WithRayID helper extracts the ray id from a Fiber context and attaches
// it to the log entry, so every log line produced while handling one request
// shares a correlation id. Counting clients retry submissions; the ray id is
// what ties an original attempt and its retries together in the logs.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development, CLI output)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "json"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger

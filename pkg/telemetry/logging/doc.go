// Package logging configures the process-wide structured logger.
//
// Logs are emitted via log/slog in either JSON or text format; the
// level and format come from configuration.
package logging

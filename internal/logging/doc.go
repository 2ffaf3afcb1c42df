// Package logging provides structured, file-based logging with rotation for
// the vectorkit server. When enabled, logs are written to ~/.vectorkit/logs/
// in addition to stderr.
package logging

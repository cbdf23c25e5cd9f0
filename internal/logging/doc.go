// Package logging provides concrete implementations of the pmig.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: plain text lines on stderr, selected by --log-format text
//   - ZapLogger: JSON lines through zap's production encoder, selected by --log-format json
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging

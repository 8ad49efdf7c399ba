// Package logging assembles the slog loggers used by the trackyear CLI.
//
// It owns the console and JSON handlers, level parsing, and the optional
// log file, so every command emits records with the same shape. Discard
// returns a logger for tests and wiring code that cannot fail.
package logging

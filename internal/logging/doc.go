// Package logging assembles structured slog loggers and formatting helpers used
// across reelsmith.
//
// It owns the console and JSON handlers, fans output out to the terminal and
// the persistent log file, and exposes context-aware helpers so stage code can
// tag log lines with topic IDs, stages, segment indexes, and correlation IDs.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging

// Package logs reads reelsmith log files for the CLI.
//
// Tail returns the last N lines of the batch log or a per-topic log along with
// the byte offset to resume from; Follow polls from that offset and hands new
// lines to a callback until the context is cancelled.
package logs

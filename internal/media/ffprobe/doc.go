// Package ffprobe provides a typed wrapper around ffprobe JSON output and the
// Prober used to measure narration length.
//
// Inspect executes ffprobe and returns the parsed Result. Prober.Probe builds
// on it: it rejects missing or empty files up front and reports every failure
// as a *services.AssetReadError so stages can skip the affected segment.
package ffprobe

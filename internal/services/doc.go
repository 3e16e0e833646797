// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp topic IDs, stage names, segment indexes, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper, and the typed domain
//     errors (asset read, selection, assembly, insufficient assets, music)
//     that the batch runner classifies with Details.
//
// Per-segment errors are logged and skipped by the stages; per-topic errors
// travel up to the batch runner, which requeues the topic.
package services

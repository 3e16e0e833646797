// Package script owns the narration script for a topic: generating it with
// an LLM, persisting it as script.json in the project directory, and turning
// it into ordered Segments for the downstream stages.
//
// Ensure is idempotent. When script.json already exists it is loaded as-is
// and the generator is never called, so a topic resumed after a failure keeps
// the script it started with.
package script

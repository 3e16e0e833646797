// Package queue persists the topic backlog in SQLite and exposes helpers for
// driving each topic through its lifecycle.
//
// Topics move pending -> processing -> completed. A topic whose run fails is
// put back to pending with its error recorded, and only moves to failed once
// it has used up workflow.max_attempts. Topics are deduplicated by slug, so
// re-importing the same list is harmless.
//
// The database is treated as working state rather than an archive. Schema
// changes bump schemaVersion in schema.go; users clear the database to adopt
// the new schema.
package queue

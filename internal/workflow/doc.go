// Package workflow turns queued topics into finished videos.
//
// Pipeline.Process runs one topic through the script, speech, footage,
// assemble, and mix stages inside work_dir/<slug>. Every stage reuses what an
// earlier run left on disk, so a requeued topic resumes instead of starting
// over. Stage progress is logged with stage_start/stage_complete events to the
// shared logger and to a per-topic JSON log under log_dir/topics.
//
// Runner.RunBatch is the only entry point that touches the queue: it holds
// the batch lock, runs preflight, claims up to batch_size pending topics, and
// records each outcome. Per-topic failures are logged, requeued (or marked
// failed once workflow.max_attempts is reached), and notified; they never
// abort the batch.
package workflow

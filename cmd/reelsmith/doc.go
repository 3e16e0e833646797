// Package main hosts the reelsmith CLI entrypoint and command graph.
//
// The Cobra command tree manages the topic queue, runs batches on demand or
// on a cron schedule, reports environment readiness, and maintains the work
// directory. Heavy lifting lives in internal/workflow; commands here resolve
// configuration, open the queue store, and render results.
package main

// Package preflight provides readiness checks for the filesystem paths,
// credentials, and external services reelsmith depends on.
//
// These checks run in two contexts:
//   - The batch runner calls RunAll before taking topics off the queue.
//     If any check fails, the batch stops before spending API quota.
//   - The CLI "reelsmith status" command renders the same results, plus a
//     live Pexels check, as a table.
package preflight

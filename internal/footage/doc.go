// Package footage picks and downloads stock footage for each narrated
// segment.
//
// A Selector is created per topic run and owns the set of candidate IDs
// already used in that run. Select searches the video source, keeps only
// candidates at least as long as the narration that have not been used, and
// picks one at random. When nothing qualifies it falls back to the first
// search result without recording it. Stage drives the selector over the
// segments that have narration, probing each narration for its duration.
package footage

// Package assembly builds the narrated base track for a topic.
//
// Assemble pairs narration and footage files by the two-digit index prefix
// of their names, normalizes each pair into an MPEG-TS unit under
// ts_segments/, and concatenates the units in ascending index order into
// base_video.mp4. Segments missing either file are left out; the order of
// the remaining units never depends on directory enumeration order.
package assembly

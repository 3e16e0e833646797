// Package mediatool wraps the ffmpeg invocations used to build a reel:
// normalizing a footage clip against its narration, concatenating the
// normalized units, and mixing background music under the voice track.
//
// Command execution goes through the Executor interface so tests can record
// invocations without a real ffmpeg binary.
package mediatool

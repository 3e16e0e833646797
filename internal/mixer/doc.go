// Package mixer lays a background music bed under the base track.
//
// The track is picked at random from the configured library (name to gain).
// Names are sorted before picking so a seeded random source gives a stable
// choice. The mixed file is written beside the destination with a
// .partial.mp4 suffix and renamed into place only when ffmpeg succeeds.
package mixer

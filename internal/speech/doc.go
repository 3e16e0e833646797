// Package speech synthesizes the narration for each script segment.
//
// EdgeTTS wraps the edge-tts command line tool. Stage drives a Synthesizer
// over the ordered segments, writing NN_<clean>.mp3 files into the project's
// audio directory. Existing non-empty files are reused so an interrupted
// topic resumes without re-synthesizing. A failed segment is logged and
// skipped; the assembly stage later excludes any segment without audio.
package speech

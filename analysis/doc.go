// Package analysis extracts a feature report from a recording: duration,
// speech segment count, pitch and energy statistics, speech rate, and a
// set of placeholder perceptual metrics.
//
// Real acoustic modeling is out of scope. Emotion, overlap ratio and the
// engagement index are fixed-output placeholders; speech rate degrades to
// a placeholder figure when no transcription backend can serve.
package analysis

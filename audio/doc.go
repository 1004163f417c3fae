// Package audio provides the decoded waveform type used by the sonix
// pipeline, a PCM-16 mono WAV codec, and file metadata inspection.
//
// Decoding failures and empty waveforms are the pipeline's only fatal
// input errors; everything downstream of a valid Waveform degrades
// instead of failing.
package audio

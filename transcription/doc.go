// Package transcription defines the provider interface and common types
// for speech-to-text backends. The analysis pipeline consumes it to turn
// transcripts into speech-rate figures; a failed transcription never fails
// an analysis, it only falls back to placeholder rates.
package transcription

// Package testutil provides deterministic waveform generators for tests:
// pure tones, silence, and composite speech/silence signals with known
// segment boundaries.
package testutil

// Package vad implements voice activity detection as a pure interval
// pipeline: raw active sample ranges become a contiguous, alternating
// speech/silence timeline, short silences are collapsed by a single-pass
// merge, and the result is formatted into time-domain segments.
//
// Raw ranges come from one of two tiers. The Engine prefers a neural
// Backend producing per-window speech probabilities and silently degrades
// to a deterministic energy detector when the backend is missing, fails,
// or returns malformed output. Detect never fails for a structurally
// valid waveform.
//
// All transforms are deterministic, allocation-predictable, and safe for
// concurrent use on independent inputs.
package vad

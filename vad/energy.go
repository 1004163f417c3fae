package vad

import "math"

// Framing defaults matching common analysis settings: 2048-sample frames
// advanced by 512 samples.
const (
	defaultFrameLength = 2048
	defaultHopLength   = 512
)

// EnergyDetector classifies sample ranges as active using framewise RMS
// energy measured in dB relative to the signal's peak frame. It is the
// always-available fallback tier: deterministic, stateless, pure.
type EnergyDetector struct {
	// TopDB is the cutoff below the peak frame, in dB. Frames quieter than
	// peak - TopDB are silence.
	TopDB float64
	// FrameLength and HopLength control framing; zero values select the
	// package defaults.
	FrameLength int
	HopLength   int
}

// Detect returns sorted, non-overlapping active sample ranges. A frame is
// active when its RMS is within TopDB of the loudest frame; runs of active
// frames are converted back to sample positions, with the final range
// clipped to the signal length.
func (d EnergyDetector) Detect(samples []float64) []Range {
	frameLength := d.FrameLength
	if frameLength <= 0 {
		frameLength = defaultFrameLength
	}
	hop := d.HopLength
	if hop <= 0 {
		hop = defaultHopLength
	}

	n := len(samples)
	if n == 0 {
		return nil
	}

	numFrames := (n + hop - 1) / hop
	rms := make([]float64, numFrames)
	peak := 0.0
	for i := 0; i < numFrames; i++ {
		start := i * hop
		end := start + frameLength
		if end > n {
			end = n
		}
		var sum float64
		for _, s := range samples[start:end] {
			sum += s * s
		}
		rms[i] = math.Sqrt(sum / float64(end-start))
		if rms[i] > peak {
			peak = rms[i]
		}
	}
	if peak == 0 {
		return nil
	}

	// rms > peak * 10^(-TopDB/20)  <=>  dB(rms/peak) > -TopDB
	cutoff := peak * math.Pow(10, -d.TopDB/20)

	var ranges []Range
	runStart := -1
	for i := 0; i <= numFrames; i++ {
		active := i < numFrames && rms[i] > cutoff
		switch {
		case active && runStart < 0:
			runStart = i
		case !active && runStart >= 0:
			start := runStart * hop
			end := i * hop
			if end > n {
				end = n
			}
			ranges = append(ranges, Range{Start: start, End: end})
			runStart = -1
		}
	}
	return ranges
}

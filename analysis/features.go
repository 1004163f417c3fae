package analysis

import "math"

const (
	frameLength = 2048
	hopLength   = 512

	// Human speech pitch search range, C2 to C7.
	pitchFloorHz = 65.0
	pitchCeilHz  = 2093.0

	// Floor for dB conversion, matching a 1e-10 power clamp.
	minRMS = 1e-5

	// Normalized autocorrelation below this is treated as unvoiced.
	voicingThreshold = 0.5
)

// energyStats returns the framewise RMS energy in dB (relative to full
// scale) as mean and standard deviation.
func energyStats(samples []float64) (mean, std float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	numFrames := (len(samples) + hopLength - 1) / hopLength
	dbs := make([]float64, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		start := i * hopLength
		end := start + frameLength
		if end > len(samples) {
			end = len(samples)
		}
		rms := frameRMS(samples[start:end])
		if rms < minRMS {
			rms = minRMS
		}
		dbs = append(dbs, 20*math.Log10(rms))
	}
	return meanStd(dbs)
}

// pitchStats estimates the fundamental frequency of voiced frames by
// normalized autocorrelation and returns its mean and standard deviation
// in Hz. Frames without a clear periodic peak are skipped as unvoiced.
func pitchStats(samples []float64, sampleRate int) (mean, std float64) {
	var voiced []float64
	for start := 0; start+frameLength <= len(samples); start += hopLength {
		if f0, ok := framePitch(samples[start:start+frameLength], sampleRate); ok {
			voiced = append(voiced, f0)
		}
	}
	if len(voiced) == 0 {
		return 0, 0
	}
	mean, std = meanStd(voiced)
	if len(voiced) < 2 {
		std = 0
	}
	return mean, std
}

// framePitch finds the autocorrelation peak inside the speech pitch range.
func framePitch(frame []float64, sampleRate int) (float64, bool) {
	minLag := int(float64(sampleRate) / pitchCeilHz)
	if minLag < 1 {
		minLag = 1
	}
	maxLag := int(float64(sampleRate) / pitchFloorHz)
	if maxLag >= len(frame) {
		maxLag = len(frame) - 1
	}

	var e0 float64
	for _, s := range frame {
		e0 += s * s
	}
	if e0 < minRMS*minRMS*float64(len(frame)) {
		return 0, false
	}

	bestLag, bestCorr := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var c float64
		for i := 0; i+lag < len(frame); i++ {
			c += frame[i] * frame[i+lag]
		}
		if c > bestCorr {
			bestCorr, bestLag = c, lag
		}
	}
	if bestLag == 0 || bestCorr/e0 < voicingThreshold {
		return 0, false
	}
	return float64(sampleRate) / float64(bestLag), true
}

func frameRMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}

func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

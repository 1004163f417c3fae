package testutil

import (
	"math"

	"github.com/skillsenselab/sonix/audio"
)

// Sine generates a pure tone of the given frequency and amplitude.
func Sine(sampleRate int, durationSec, freqHz, amplitude float64) audio.Waveform {
	n := int(float64(sampleRate) * durationSec)
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = amplitude * math.Sin(2*math.Pi*freqHz*t)
	}
	return audio.Waveform{Samples: samples, SampleRate: sampleRate}
}

// Silence generates a zero-amplitude waveform.
func Silence(sampleRate int, durationSec float64) audio.Waveform {
	n := int(float64(sampleRate) * durationSec)
	return audio.Waveform{Samples: make([]float64, n), SampleRate: sampleRate}
}

// Span marks a speech region in seconds within a composite waveform.
type Span struct {
	StartSec float64
	EndSec   float64
}

// SpeechSilence builds a waveform of totalSec seconds that is silent except
// for a 220 Hz tone inside each span. Spans must be sorted and disjoint.
func SpeechSilence(sampleRate int, totalSec float64, spans ...Span) audio.Waveform {
	n := int(float64(sampleRate) * totalSec)
	samples := make([]float64, n)
	for _, span := range spans {
		start := int(span.StartSec * float64(sampleRate))
		end := int(span.EndSec * float64(sampleRate))
		if start < 0 {
			start = 0
		}
		if end > n {
			end = n
		}
		for i := start; i < end; i++ {
			t := float64(i) / float64(sampleRate)
			samples[i] = 0.5 * math.Sin(2*math.Pi*220.0*t)
		}
	}
	return audio.Waveform{Samples: samples, SampleRate: sampleRate}
}

package audio

import (
	"github.com/skillsenselab/sonix/errors"
)

// Waveform is a decoded mono audio signal. Samples are normalized float64
// amplitudes in [-1, 1]. Components treat the sample slice as read-only.
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the signal length in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Validate checks that the waveform is structurally usable for segmentation.
func (w Waveform) Validate() error {
	if w.SampleRate <= 0 {
		return errors.InvalidInput("sample_rate", "must be a positive integer")
	}
	if len(w.Samples) == 0 {
		return errors.EmptyWaveform()
	}
	return nil
}

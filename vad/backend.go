package vad

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/skillsenselab/sonix/audio"
	"github.com/skillsenselab/sonix/errors"
	"github.com/skillsenselab/sonix/provider"
)

// Window is a neural backend's verdict for one time slice: the probability
// that the slice contains speech.
type Window struct {
	StartSec    float64 `json:"start_sec"`
	EndSec      float64 `json:"end_sec"`
	Probability float64 `json:"probability"`
}

// Backend is a neural VAD tier. Implementations return per-window speech
// probabilities for a waveform; the Engine converts them to sample ranges
// by thresholding.
type Backend interface {
	provider.Provider

	// Probabilities runs inference and returns time-ordered windows.
	Probabilities(ctx context.Context, w audio.Waveform) ([]Window, error)
}

// NewBackendRegistry creates a provider registry for neural VAD backends.
func NewBackendRegistry() *provider.Registry[Backend] {
	return provider.NewRegistry[Backend]()
}

// rangesFromWindows thresholds probability windows into sorted,
// non-overlapping active sample ranges. Structurally invalid output (nil
// window list, inverted windows, probabilities outside [0,1]) is reported
// as a recoverable malformed-output error.
func rangesFromWindows(windows []Window, threshold float64, sampleRate, total int, backend string) ([]Range, error) {
	if windows == nil {
		return nil, errors.MalformedOutput(backend, "nil window list")
	}

	var ranges []Range
	for i, win := range windows {
		if math.IsNaN(win.Probability) || win.Probability < 0 || win.Probability > 1 {
			return nil, errors.MalformedOutput(backend, fmt.Sprintf("window %d has invalid probability %v", i, win.Probability))
		}
		if win.EndSec <= win.StartSec {
			return nil, errors.MalformedOutput(backend, fmt.Sprintf("window %d is empty or inverted: [%v,%v)", i, win.StartSec, win.EndSec))
		}
		if win.Probability < threshold {
			continue
		}
		start := int(win.StartSec * float64(sampleRate))
		end := int(win.EndSec * float64(sampleRate))
		if start < 0 {
			start = 0
		}
		if end > total {
			end = total
		}
		if start >= end {
			continue
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })

	// coalesce touching or overlapping ranges
	merged := ranges[:0]
	for _, r := range ranges {
		if len(merged) > 0 && r.Start <= merged[len(merged)-1].End {
			if r.End > merged[len(merged)-1].End {
				merged[len(merged)-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged, nil
}

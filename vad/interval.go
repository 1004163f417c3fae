package vad

import (
	"fmt"

	"github.com/skillsenselab/sonix/errors"
)

// Range is a detector-reported region of active (speech) samples.
// Ranges are sorted by start, non-overlapping, and lie within [0, total).
type Range struct {
	Start int
	End   int
}

// Interval is a labeled sample range. A sequence of intervals forms a
// timeline when it is contiguous over [0, total) and adjacent intervals
// alternate labels.
type Interval struct {
	Start  int
	End    int
	Speech bool
}

// IntervalsFromRanges converts raw active ranges plus the total sample
// count into a contiguous, alternating interval timeline covering
// [0, total). Zero-length silence gaps between touching ranges are never
// emitted.
func IntervalsFromRanges(ranges []Range, total int) []Interval {
	if len(ranges) == 0 {
		return []Interval{{Start: 0, End: total, Speech: false}}
	}

	entries := make([]Interval, 0, 2*len(ranges)+1)

	if ranges[0].Start > 0 {
		entries = append(entries, Interval{Start: 0, End: ranges[0].Start})
	}
	for i, r := range ranges {
		entries = append(entries, Interval{Start: r.Start, End: r.End, Speech: true})
		if i+1 < len(ranges) && ranges[i+1].Start > r.End {
			entries = append(entries, Interval{Start: r.End, End: ranges[i+1].Start})
		}
	}
	if last := ranges[len(ranges)-1].End; last < total {
		entries = append(entries, Interval{Start: last, End: total})
	}

	return entries
}

// ValidateTimeline checks the contiguity and alternation invariants on an
// interval sequence. A violation indicates an upstream bug, not a runtime
// condition.
func ValidateTimeline(entries []Interval, total int) error {
	if len(entries) == 0 {
		return errors.ContractViolation("vad", "empty interval timeline")
	}
	if entries[0].Start != 0 {
		return errors.ContractViolation("vad", fmt.Sprintf("timeline starts at %d, want 0", entries[0].Start))
	}
	if entries[len(entries)-1].End != total {
		return errors.ContractViolation("vad", fmt.Sprintf("timeline ends at %d, want %d", entries[len(entries)-1].End, total))
	}
	for i, e := range entries {
		if e.Start >= e.End {
			return errors.ContractViolation("vad", fmt.Sprintf("interval %d is empty or inverted: [%d,%d)", i, e.Start, e.End))
		}
		if i == 0 {
			continue
		}
		prev := entries[i-1]
		if e.Start != prev.End {
			return errors.ContractViolation("vad", fmt.Sprintf("gap between interval %d and %d: %d != %d", i-1, i, prev.End, e.Start))
		}
		if e.Speech == prev.Speech {
			return errors.ContractViolation("vad", fmt.Sprintf("intervals %d and %d share label", i-1, i))
		}
	}
	return nil
}

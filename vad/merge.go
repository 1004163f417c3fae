package vad

// MergeIntervals collapses short silences in an interval sequence. It is a
// single left-to-right fold whose decisions depend only on the last
// accumulated interval:
//
//   - a silence no longer than minGap following an accumulated silence is
//     fused into it;
//   - a speech interval following an accumulated silence no longer than
//     minGap swallows that silence, producing one speech interval from the
//     silence's start to the speech's end.
//
// The fold is deliberately asymmetric: a short silence is only ever
// absorbed by what follows it, never by a preceding speech interval alone.
// Running MergeIntervals on its own output with the same minGap is a no-op.
func MergeIntervals(entries []Interval, minGap int) []Interval {
	if len(entries) == 0 {
		return nil
	}

	merged := make([]Interval, 0, len(entries))
	for _, cur := range entries {
		if len(merged) == 0 {
			merged = append(merged, cur)
			continue
		}
		prev := &merged[len(merged)-1]
		switch {
		case !prev.Speech && !cur.Speech && cur.End-cur.Start <= minGap:
			prev.End = cur.End
		case !prev.Speech && cur.Speech && prev.End-prev.Start <= minGap:
			prev.End = cur.End
			prev.Speech = true
		default:
			merged = append(merged, cur)
		}
	}
	return merged
}

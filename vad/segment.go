package vad

// Segment labels for the binary speech/silence path. Speaker-attributed
// labels are the diarization package's concern.
const (
	LabelSpeech  = "speech"
	LabelSilence = "silence"
)

// Segment is a time-domain span of the recording.
type Segment struct {
	StartTimeSec float64 `json:"start_time_sec"`
	EndTimeSec   float64 `json:"end_time_sec"`
	Label        string  `json:"label"`
	Transcript   string  `json:"transcript"`
}

// SegmentsFromIntervals converts merged intervals into time-domain
// segments. Speech boundaries are padded outward by pad samples and
// clamped to [0, total]; silence boundaries are reported exactly.
func SegmentsFromIntervals(entries []Interval, sampleRate, total, pad int) []Segment {
	segments := make([]Segment, 0, len(entries))
	sr := float64(sampleRate)
	for _, e := range entries {
		seg := Segment{Label: LabelSilence}
		start, end := e.Start, e.End
		if e.Speech {
			seg.Label = LabelSpeech
			start -= pad
			if start < 0 {
				start = 0
			}
			end += pad
			if end > total {
				end = total
			}
		}
		seg.StartTimeSec = float64(start) / sr
		seg.EndTimeSec = float64(end) / sr
		segments = append(segments, seg)
	}
	return segments
}

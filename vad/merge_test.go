package vad

import "testing"

func intervalsEqual(a, b []Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMergeIntervals(t *testing.T) {
	tests := []struct {
		name    string
		entries []Interval
		minGap  int
		want    []Interval
	}{
		{
			name: "adjacent short silences fuse before speech is considered",
			entries: []Interval{
				{0, 10, false}, {11, 12, false}, {20, 30, true},
			},
			minGap: 2,
			want:   []Interval{{0, 12, false}, {20, 30, true}},
		},
		{
			name: "short silence swallowed by following speech",
			entries: []Interval{
				{0, 100, true}, {100, 105, false}, {105, 200, true}, {200, 300, false},
			},
			minGap: 10,
			want:   []Interval{{0, 100, true}, {100, 200, true}, {200, 300, false}},
		},
		{
			// bridging keeps the preceding speech interval separate, so the
			// merged output may hold two adjacent speech intervals
			name: "bridged speech stays separate from preceding speech",
			entries: []Interval{
				{0, 10, true}, {10, 12, false}, {12, 20, true},
			},
			minGap: 2,
			want:   []Interval{{0, 10, true}, {10, 20, true}},
		},
		{
			name: "long silence stands",
			entries: []Interval{
				{0, 100, true}, {100, 150, false}, {150, 200, true},
			},
			minGap: 10,
			want:   []Interval{{0, 100, true}, {100, 150, false}, {150, 200, true}},
		},
		{
			name: "trailing short silence has no qualifying neighbor",
			entries: []Interval{
				{0, 100, true}, {100, 105, false},
			},
			minGap: 10,
			want:   []Interval{{0, 100, true}, {100, 105, false}},
		},
		{
			name: "leading short silence absorbed into first speech",
			entries: []Interval{
				{0, 5, false}, {5, 100, true},
			},
			minGap: 10,
			want:   []Interval{{0, 100, true}},
		},
		{
			name:    "single silence unchanged",
			entries: []Interval{{0, 12345, false}},
			minGap:  100,
			want:    []Interval{{0, 12345, false}},
		},
		{
			name:    "empty input",
			entries: nil,
			minGap:  10,
			want:    nil,
		},
		{
			name: "zero min gap keeps everything",
			entries: []Interval{
				{0, 10, false}, {10, 20, true}, {20, 30, false},
			},
			minGap: 0,
			want:   []Interval{{0, 10, false}, {10, 20, true}, {20, 30, false}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeIntervals(tc.entries, tc.minGap)
			if !intervalsEqual(got, tc.want) {
				t.Errorf("MergeIntervals() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMergeIntervals_Idempotent(t *testing.T) {
	inputs := [][]Interval{
		{{0, 10, false}, {11, 12, false}, {20, 30, true}},
		{{0, 100, true}, {100, 105, false}, {105, 200, true}, {200, 300, false}},
		{{0, 5, false}, {5, 100, true}, {100, 250, false}, {250, 400, true}},
		{{0, 12345, false}},
	}
	const minGap = 10
	for _, entries := range inputs {
		once := MergeIntervals(entries, minGap)
		twice := MergeIntervals(once, minGap)
		if !intervalsEqual(once, twice) {
			t.Errorf("merge not idempotent: first %v, second %v", once, twice)
		}
	}
}

func TestMergeIntervals_InputUntouched(t *testing.T) {
	entries := []Interval{{0, 10, false}, {11, 12, false}, {20, 30, true}}
	MergeIntervals(entries, 2)
	want := []Interval{{0, 10, false}, {11, 12, false}, {20, 30, true}}
	if !intervalsEqual(entries, want) {
		t.Errorf("input mutated: %v", entries)
	}
}

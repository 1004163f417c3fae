package vad

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/skillsenselab/sonix/audio"
	"github.com/skillsenselab/sonix/testutil"
)

// fakeBackend scripts the neural tier for fallback tests.
type fakeBackend struct {
	windows []Window
	err     error
	panics  bool
}

func (f *fakeBackend) Name() string                       { return "fake" }
func (f *fakeBackend) IsAvailable(_ context.Context) bool { return true }

func (f *fakeBackend) Probabilities(_ context.Context, _ audio.Waveform) ([]Window, error) {
	if f.panics {
		panic("inference blew up")
	}
	return f.windows, f.err
}

func assertBinaryLabels(t *testing.T, segs []Segment) {
	t.Helper()
	if len(segs) == 0 {
		t.Fatal("expected non-empty segment list")
	}
	for i, s := range segs {
		if s.Label != LabelSpeech && s.Label != LabelSilence {
			t.Errorf("segment %d has label %q", i, s.Label)
		}
	}
}

func TestEngine_EnergyOnly(t *testing.T) {
	w := testutil.SpeechSilence(16000, 4.0, testutil.Span{StartSec: 1.5, EndSec: 2.5})
	e := NewEngine(DefaultConfig())

	segs, err := e.Detect(context.Background(), w)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	assertBinaryLabels(t, segs)
	if len(segs) != 3 {
		t.Fatalf("expected silence/speech/silence, got %v", segs)
	}
	if segs[0].Label != LabelSilence || segs[1].Label != LabelSpeech || segs[2].Label != LabelSilence {
		t.Errorf("unexpected label order: %v", segs)
	}
}

func TestEngine_NeuralSuccess(t *testing.T) {
	w := testutil.Silence(16000, 3.0)
	backend := &fakeBackend{windows: []Window{
		{StartSec: 0.0, EndSec: 1.0, Probability: 0.1},
		{StartSec: 1.0, EndSec: 2.0, Probability: 0.9},
		{StartSec: 2.0, EndSec: 3.0, Probability: 0.2},
	}}
	cfg := DefaultConfig()
	cfg.MinSilenceGapSec = 0.5
	e := NewEngine(cfg, WithBackend(backend))

	segs, err := e.Detect(context.Background(), w)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %v", segs)
	}
	if segs[1].Label != LabelSpeech || segs[1].StartTimeSec != 1.0 || segs[1].EndTimeSec != 2.0 {
		t.Errorf("neural speech segment = %+v", segs[1])
	}
}

func TestEngine_NeuralThreshold(t *testing.T) {
	w := testutil.Silence(16000, 2.0)
	backend := &fakeBackend{windows: []Window{
		{StartSec: 0.0, EndSec: 1.0, Probability: 0.5}, // >= threshold counts
		{StartSec: 1.0, EndSec: 2.0, Probability: 0.49},
	}}
	e := NewEngine(DefaultConfig(), WithBackend(backend))

	segs, err := e.Detect(context.Background(), w)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if segs[0].Label != LabelSpeech || segs[0].EndTimeSec != 1.0 {
		t.Errorf("expected speech up to 1.0s, got %v", segs)
	}
}

func TestEngine_FallbackOnNeuralFailure(t *testing.T) {
	w := testutil.SpeechSilence(16000, 3.0, testutil.Span{StartSec: 1.0, EndSec: 2.0})

	tests := []struct {
		name    string
		backend Backend
	}{
		{"backend error", &fakeBackend{err: errors.New("model load failed")}},
		{"nil window list", &fakeBackend{windows: nil}},
		{"NaN probability", &fakeBackend{windows: []Window{{0, 1, math.NaN()}}}},
		{"probability out of range", &fakeBackend{windows: []Window{{0, 1, 1.5}}}},
		{"inverted window", &fakeBackend{windows: []Window{{2, 1, 0.9}}}},
		{"backend panic", &fakeBackend{panics: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine(DefaultConfig(), WithBackend(tc.backend))
			segs, err := e.Detect(context.Background(), w)
			if err != nil {
				t.Fatalf("Detect must not fail when the neural tier fails: %v", err)
			}
			assertBinaryLabels(t, segs)
			// energy fallback still finds the tone
			hasSpeech := false
			for _, s := range segs {
				if s.Label == LabelSpeech {
					hasSpeech = true
				}
			}
			if !hasSpeech {
				t.Error("energy fallback found no speech")
			}
		})
	}
}

func TestEngine_EmptySpeechFromNeuralIsSuccess(t *testing.T) {
	// all windows below threshold is a valid "no speech" verdict, not a failure
	w := testutil.SpeechSilence(16000, 2.0, testutil.Span{StartSec: 0.5, EndSec: 1.5})
	backend := &fakeBackend{windows: []Window{{0, 2, 0.05}}}
	e := NewEngine(DefaultConfig(), WithBackend(backend))

	segs, err := e.Detect(context.Background(), w)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(segs) != 1 || segs[0].Label != LabelSilence {
		t.Errorf("expected single silence segment, got %v", segs)
	}
}

func TestEngine_InvalidInput(t *testing.T) {
	e := NewEngine(DefaultConfig())
	if _, err := e.Detect(context.Background(), audio.Waveform{SampleRate: 16000}); err == nil {
		t.Error("expected error for empty waveform")
	}
	if _, err := e.Detect(context.Background(), audio.Waveform{Samples: []float64{0.1}}); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestEngine_EndToEnd(t *testing.T) {
	// 12.5s recording: silence, speech 1.5-5.5, silence, speech 7.0-12.5
	const sr = 16000
	w := testutil.SpeechSilence(sr, 12.5,
		testutil.Span{StartSec: 1.5, EndSec: 5.5},
		testutil.Span{StartSec: 7.0, EndSec: 12.5},
	)
	cfg := DefaultConfig()
	cfg.TopDB = 40
	cfg.MinSilenceGapSec = 1.0
	e := NewEngine(cfg)

	segs, err := e.Detect(context.Background(), w)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(segs) != 4 {
		t.Fatalf("expected 4 segments, got %d: %v", len(segs), segs)
	}

	wantLabels := []string{LabelSilence, LabelSpeech, LabelSilence, LabelSpeech}
	wantBounds := [][2]float64{{0, 1.5}, {1.5, 5.5}, {5.5, 7.0}, {7.0, 12.5}}
	const tol = float64(defaultFrameLength) / sr // detector frame granularity

	for i, s := range segs {
		if s.Label != wantLabels[i] {
			t.Errorf("segment %d label = %q, want %q", i, s.Label, wantLabels[i])
		}
		if math.Abs(s.StartTimeSec-wantBounds[i][0]) > tol {
			t.Errorf("segment %d start = %v, want %v ± %v", i, s.StartTimeSec, wantBounds[i][0], tol)
		}
		if math.Abs(s.EndTimeSec-wantBounds[i][1]) > tol {
			t.Errorf("segment %d end = %v, want %v ± %v", i, s.EndTimeSec, wantBounds[i][1], tol)
		}
	}

	// the timeline has no holes
	if segs[0].StartTimeSec != 0 {
		t.Errorf("timeline starts at %v", segs[0].StartTimeSec)
	}
	for i := 1; i < len(segs); i++ {
		if segs[i].StartTimeSec != segs[i-1].EndTimeSec {
			t.Errorf("gap between segment %d and %d", i-1, i)
		}
	}
	if segs[len(segs)-1].EndTimeSec != 12.5 {
		t.Errorf("timeline ends at %v, want 12.5", segs[len(segs)-1].EndTimeSec)
	}
}

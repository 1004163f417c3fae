package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/skillsenselab/sonix/audio"
	"github.com/skillsenselab/sonix/testutil"
	"github.com/skillsenselab/sonix/transcription"
	"github.com/skillsenselab/sonix/vad"
)

// fakeTranscriber scripts the transcription tier.
type fakeTranscriber struct {
	resp      *transcription.Response
	err       error
	available bool
}

func (f *fakeTranscriber) Name() string                       { return "fake" }
func (f *fakeTranscriber) IsAvailable(_ context.Context) bool { return f.available }

func (f *fakeTranscriber) Transcribe(_ context.Context, _ transcription.Request) (*transcription.Response, error) {
	return f.resp, f.err
}

func TestAnalyzer_PureTone(t *testing.T) {
	w := testutil.Sine(16000, 1.0, 220.0, 0.5)
	a := NewAnalyzer(vad.NewEngine(vad.DefaultConfig()))

	report, err := a.Analyze(context.Background(), w, "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.DurationSec != 1.0 {
		t.Errorf("duration = %v, want 1.0", report.DurationSec)
	}
	if report.SpeechSegments != 1 {
		t.Errorf("speech segments = %d, want 1", report.SpeechSegments)
	}
	// autocorrelation lands on the nearest integer lag of the 220 Hz period
	if math.Abs(report.AveragePitchHz-220.0) > 3.0 {
		t.Errorf("average pitch = %v, want ~220", report.AveragePitchHz)
	}
	if report.PitchVariance > 1.0 {
		t.Errorf("pitch variance = %v for a constant tone", report.PitchVariance)
	}
	// rms of a 0.5 amplitude sine is 0.3536, about -9.03 dBFS
	if math.Abs(report.MeanEnergyDB-(-9.03)) > 1.0 {
		t.Errorf("mean energy = %v dB, want ~-9.03", report.MeanEnergyDB)
	}
}

func TestAnalyzer_SpeechSilenceTimeline(t *testing.T) {
	w := testutil.SpeechSilence(16000, 6.0,
		testutil.Span{StartSec: 1.5, EndSec: 2.5},
		testutil.Span{StartSec: 4.0, EndSec: 5.0},
	)
	a := NewAnalyzer(vad.NewEngine(vad.DefaultConfig()))

	report, err := a.Analyze(context.Background(), w, "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.SpeechSegments != 2 {
		t.Errorf("speech segments = %d, want 2", report.SpeechSegments)
	}
	if len(report.Segments) == 0 {
		t.Fatal("expected a segment timeline in the report")
	}
	// silence frames pin the energy spread well above a pure tone's
	if report.EnergyVariabilityDB < 10 {
		t.Errorf("energy variability = %v dB, expected a wide spread", report.EnergyVariabilityDB)
	}
}

func TestAnalyzer_Placeholders(t *testing.T) {
	w := testutil.Sine(16000, 1.0, 220.0, 0.5)
	a := NewAnalyzer(vad.NewEngine(vad.DefaultConfig()))

	report, err := a.Analyze(context.Background(), w, "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Emotion != placeholderEmotion() {
		t.Errorf("emotion = %+v", report.Emotion)
	}
	if report.OverlapRatio != placeholderOverlapRatio {
		t.Errorf("overlap ratio = %v", report.OverlapRatio)
	}
	// near-zero pitch variance leaves only the happy weight
	want := round2(placeholderEmotion().Happy * engagementScale)
	if math.Abs(report.EngagementIndex-want) > 0.05 {
		t.Errorf("engagement index = %v, want ~%v", report.EngagementIndex, want)
	}
}

func TestAnalyzer_SpeechRate(t *testing.T) {
	w := testutil.Sine(16000, 2.0, 220.0, 0.5)

	tests := []struct {
		name        string
		transcriber transcription.Provider
		path        string
		want        int
	}{
		{"no transcriber", nil, "rec.wav", placeholderWPM},
		{"no audio path", &fakeTranscriber{available: true}, "", placeholderWPM},
		{"backend unavailable", &fakeTranscriber{available: false}, "rec.wav", placeholderWPM},
		{"backend error", &fakeTranscriber{available: true, err: errors.New("boom")}, "rec.wav", placeholderWPM},
		{
			"four words in two seconds",
			&fakeTranscriber{available: true, resp: &transcription.Response{Text: "testing one two three"}},
			"rec.wav",
			120,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := []Option{}
			if tc.transcriber != nil {
				opts = append(opts, WithTranscriber(tc.transcriber))
			}
			a := NewAnalyzer(vad.NewEngine(vad.DefaultConfig()), opts...)
			report, err := a.Analyze(context.Background(), w, tc.path)
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if report.SpeechRateWPM != tc.want {
				t.Errorf("speech rate = %d, want %d", report.SpeechRateWPM, tc.want)
			}
		})
	}
}

func TestAnalyzer_InvalidInput(t *testing.T) {
	a := NewAnalyzer(vad.NewEngine(vad.DefaultConfig()))
	if _, err := a.Analyze(context.Background(), audio.Waveform{SampleRate: 16000}, ""); err == nil {
		t.Error("expected error for empty waveform")
	}
}

func TestCompareVoiceSimilarity(t *testing.T) {
	if got := CompareVoiceSimilarity("a.wav", "b.wav"); got != 1.0 {
		t.Errorf("similarity = %v, want 1.0", got)
	}
}

func TestEngagementIndex_Clamped(t *testing.T) {
	emotion := placeholderEmotion()
	if got := engagementIndex(1000, emotion); got != engagementScale {
		t.Errorf("engagement = %v, want clamped %v", got, engagementScale)
	}
	if got := engagementIndex(0, EmotionScores{}); got != 0 {
		t.Errorf("engagement = %v, want 0", got)
	}
}

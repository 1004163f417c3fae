package analysis

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/sonix/audio"
	"github.com/skillsenselab/sonix/logger"
	"github.com/skillsenselab/sonix/observability"
	"github.com/skillsenselab/sonix/transcription"
	"github.com/skillsenselab/sonix/vad"
)

const instrumentationName = "github.com/skillsenselab/sonix/analysis"

// Report is the assembled feature document for one recording.
type Report struct {
	DurationSec         float64       `json:"duration_sec"`
	SpeechSegments      int           `json:"speech_segments"`
	AveragePitchHz      float64       `json:"average_pitch_hz"`
	PitchVariance       float64       `json:"pitch_variance"`
	MeanEnergyDB        float64       `json:"mean_energy_db"`
	EnergyVariabilityDB float64       `json:"energy_variability_db"`
	SpeechRateWPM       int           `json:"speech_rate_wpm"`
	Emotion             EmotionScores `json:"emotion"`
	OverlapRatio        float64       `json:"overlap_ratio"`
	EngagementIndex     float64       `json:"engagement_index"`
	Segments            []vad.Segment `json:"segments"`
}

// Analyzer extracts a Report from a waveform using the vad engine for
// segmentation and an optional transcription backend for speech rate.
type Analyzer struct {
	engine      *vad.Engine
	transcriber transcription.Provider
	log         *logger.Logger
	tracer      trace.Tracer
	metrics     *observability.PipelineMetrics
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTranscriber supplies a transcription backend for speech rate. Without
// one the report carries the placeholder rate.
func WithTranscriber(p transcription.Provider) Option {
	return func(a *Analyzer) { a.transcriber = p }
}

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *Analyzer) { a.log = l }
}

// NewAnalyzer creates an Analyzer over the given vad engine.
func NewAnalyzer(engine *vad.Engine, opts ...Option) *Analyzer {
	a := &Analyzer{
		engine: engine,
		log:    logger.Get("analysis"),
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.metrics, _ = observability.NewPipelineMetrics(otel.Meter(instrumentationName))
	return a
}

// AnalyzeFile decodes a WAV file and analyzes it. Decode failures are
// fatal.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Report, error) {
	w, err := audio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, w, path)
}

// Analyze extracts the feature report from a decoded waveform. audioPath
// is only forwarded to the transcription backend and may be empty.
func (a *Analyzer) Analyze(ctx context.Context, w audio.Waveform, audioPath string) (*Report, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	ctx, span := a.tracer.Start(ctx, "analysis.Analyze", trace.WithAttributes(
		attribute.Int("audio.sample_rate", w.SampleRate),
		attribute.Int("audio.samples", len(w.Samples)),
	))
	defer span.End()

	start := time.Now()
	log := a.log.WithFields(map[string]interface{}{
		logger.FieldRequestID:  uuid.NewString(),
		logger.FieldSampleRate: w.SampleRate,
	})

	segments, err := a.engine.Detect(ctx, w)
	if err != nil {
		if a.metrics != nil {
			a.metrics.RecordAnalyze(ctx, "error", time.Since(start))
		}
		return nil, err
	}
	speechSegments := 0
	for _, s := range segments {
		if s.Label == vad.LabelSpeech {
			speechSegments++
		}
	}

	meanEnergy, energyVar := energyStats(w.Samples)
	avgPitch, pitchVar := pitchStats(w.Samples, w.SampleRate)
	emotion := placeholderEmotion()

	report := &Report{
		DurationSec:         round2(w.Duration()),
		SpeechSegments:      speechSegments,
		AveragePitchHz:      round2(avgPitch),
		PitchVariance:       round2(pitchVar),
		MeanEnergyDB:        round2(meanEnergy),
		EnergyVariabilityDB: round2(energyVar),
		SpeechRateWPM:       a.speechRate(ctx, audioPath, w.Duration(), log),
		Emotion:             emotion,
		OverlapRatio:        placeholderOverlapRatio,
		EngagementIndex:     round2(engagementIndex(pitchVar, emotion)),
		Segments:            segments,
	}

	log.Info("analysis complete", map[string]interface{}{
		logger.FieldSegments: len(segments),
		logger.FieldDuration: time.Since(start).Milliseconds(),
	})
	span.SetAttributes(attribute.Int("analysis.speech_segments", speechSegments))
	if a.metrics != nil {
		a.metrics.RecordAnalyze(ctx, "ok", time.Since(start))
	}
	return report, nil
}

// speechRate computes words per minute from a transcript. Any failure in
// the transcription tier degrades to the placeholder rate.
func (a *Analyzer) speechRate(ctx context.Context, audioPath string, durationSec float64, log *logger.Logger) int {
	if a.transcriber == nil || audioPath == "" || durationSec <= 0 {
		return placeholderWPM
	}
	if !a.transcriber.IsAvailable(ctx) {
		log.Debug("transcription backend unavailable, using placeholder rate", map[string]interface{}{
			logger.FieldBackend: a.transcriber.Name(),
		})
		return placeholderWPM
	}

	resp, err := a.transcriber.Transcribe(ctx, transcription.Request{AudioPath: audioPath})
	if err != nil || resp == nil {
		log.Warn("transcription failed, using placeholder rate", map[string]interface{}{
			logger.FieldBackend: a.transcriber.Name(),
		})
		return placeholderWPM
	}
	return int(math.Round(float64(resp.WordCount()) / (durationSec / 60.0)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

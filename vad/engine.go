package vad

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/sonix/audio"
	"github.com/skillsenselab/sonix/errors"
	"github.com/skillsenselab/sonix/logger"
	"github.com/skillsenselab/sonix/observability"
)

const instrumentationName = "github.com/skillsenselab/sonix/vad"

// Fallback tier names reported in logs, spans and metrics.
const (
	TierNeural = "neural"
	TierEnergy = "energy"
)

// Config holds the recognized segmentation parameters.
type Config struct {
	// TopDB is the energy detector sensitivity: samples quieter than
	// TopDB below the signal's peak are silence.
	TopDB float64 `json:"top_db" mapstructure:"top_db" validate:"gt=0"`
	// MinSilenceGapSec is the minimum silence length kept standalone;
	// shorter silences are collapsed into neighbors.
	MinSilenceGapSec float64 `json:"min_silence_gap_sec" mapstructure:"min_silence_gap_sec" validate:"gte=0"`
	// PadSec pads speech segment boundaries outward, clamped to the
	// recording.
	PadSec float64 `json:"pad_sec" mapstructure:"pad_sec" validate:"gte=0"`
	// NeuralThreshold is the speech probability cutoff for neural windows.
	NeuralThreshold float64 `json:"neural_threshold" mapstructure:"neural_threshold" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the defaults used by the original pipeline.
func DefaultConfig() Config {
	return Config{
		TopDB:            40,
		MinSilenceGapSec: 1.0,
		PadSec:           0,
		NeuralThreshold:  0.5,
	}
}

// Engine orchestrates the two-tier segmentation pipeline.
type Engine struct {
	cfg       Config
	backend   Backend
	log       *logger.Logger
	tracer    trace.Tracer
	fallbacks metric.Int64Counter
	metrics   *observability.PipelineMetrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithBackend supplies a neural VAD backend as the preferred tier.
func WithBackend(b Backend) Option {
	return func(e *Engine) { e.backend = b }
}

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an Engine. Without a backend option the energy
// detector is the sole tier.
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		log:    logger.Get("vad"),
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.fallbacks, _ = otel.Meter(instrumentationName).Int64Counter(
		"sonix.vad.fallbacks",
		metric.WithDescription("Number of neural-tier failures degraded to the energy detector."),
	)
	e.metrics, _ = observability.NewPipelineMetrics(otel.Meter(instrumentationName))
	return e
}

// Config returns the engine's segmentation parameters.
func (e *Engine) Config() Config { return e.cfg }

// Detect segments a waveform into speech and silence. It returns an error
// only for structurally invalid input; neural-tier failures of any kind
// degrade to the energy detector, so the result is always a non-empty
// timeline for valid audio.
func (e *Engine) Detect(ctx context.Context, w audio.Waveform) ([]Segment, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "vad.Detect", trace.WithAttributes(
		attribute.Int("audio.sample_rate", w.SampleRate),
		attribute.Int("audio.samples", len(w.Samples)),
	))
	defer span.End()

	start := time.Now()
	log := e.log.WithFields(map[string]interface{}{
		logger.FieldRequestID:  uuid.NewString(),
		logger.FieldSampleRate: w.SampleRate,
		logger.FieldSamples:    len(w.Samples),
	})

	total := len(w.Samples)
	tier := TierEnergy
	var ranges []Range

	if e.backend != nil {
		r, err := e.neuralRanges(ctx, w)
		if err != nil {
			log.Warn("neural tier failed, degrading to energy detector", map[string]interface{}{
				logger.FieldBackend: e.backend.Name(),
				logger.FieldError:   err.Error(),
			})
			e.fallbacks.Add(ctx, 1, metric.WithAttributes(
				attribute.String("backend", e.backend.Name()),
			))
		} else {
			ranges = r
			tier = TierNeural
		}
	}
	if tier == TierEnergy {
		ranges = EnergyDetector{TopDB: e.cfg.TopDB}.Detect(w.Samples)
	}
	span.SetAttributes(attribute.String("vad.tier", tier))

	entries := IntervalsFromRanges(ranges, total)
	if err := ValidateTimeline(entries, total); err != nil {
		return nil, err
	}

	minGap := int(e.cfg.MinSilenceGapSec * float64(w.SampleRate))
	pad := int(e.cfg.PadSec * float64(w.SampleRate))

	merged := MergeIntervals(entries, minGap)
	segments := SegmentsFromIntervals(merged, w.SampleRate, total, pad)

	log.Info("segmentation complete", map[string]interface{}{
		logger.FieldTier:     tier,
		logger.FieldSegments: len(segments),
		logger.FieldDuration: time.Since(start).Milliseconds(),
	})
	span.SetAttributes(attribute.Int("vad.segments", len(segments)))
	if e.metrics != nil {
		e.metrics.RecordDetect(ctx, tier, time.Since(start))
	}
	return segments, nil
}

// neuralRanges runs the neural tier. Transport errors, panics and
// malformed output all come back as recoverable errors so the caller can
// degrade instead of propagating.
func (e *Engine) neuralRanges(ctx context.Context, w audio.Waveform) (ranges []Range, err error) {
	defer func() {
		if r := recover(); r != nil {
			ranges = nil
			err = errors.BackendFailed(e.backend.Name(), fmt.Errorf("panic: %v", r))
		}
	}()

	windows, err := e.backend.Probabilities(ctx, w)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Timeout("vad.Probabilities").WithCause(err)
		}
		return nil, errors.BackendFailed(e.backend.Name(), err)
	}
	return rangesFromWindows(windows, e.cfg.NeuralThreshold, w.SampleRate, len(w.Samples), e.backend.Name())
}

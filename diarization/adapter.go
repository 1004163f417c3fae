package diarization

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/sonix/audio"
	"github.com/skillsenselab/sonix/errors"
	"github.com/skillsenselab/sonix/logger"
	"github.com/skillsenselab/sonix/vad"
)

const instrumentationName = "github.com/skillsenselab/sonix/diarization"

// Adapter reconciles two segmentation sources. With a credential and a
// reachable backend it returns speaker-attributed segments; on any backend
// failure, or without a credential, it substitutes the vad engine's binary
// speech/silence timeline. The engine has its own neural-to-energy
// fallback, so degradation composes across tiers.
type Adapter struct {
	engine     *vad.Engine
	provider   Provider
	credential string
	log        *logger.Logger
	tracer     trace.Tracer
	fallbacks  metric.Int64Counter
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithProvider supplies a diarization backend as the preferred tier.
func WithProvider(p Provider) AdapterOption {
	return func(a *Adapter) { a.provider = p }
}

// WithCredential enables the diarization tier. An empty credential keeps
// the adapter on the fallback path.
func WithCredential(credential string) AdapterOption {
	return func(a *Adapter) { a.credential = credential }
}

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) AdapterOption {
	return func(a *Adapter) { a.log = l }
}

// NewAdapter creates an Adapter over the given vad engine.
func NewAdapter(engine *vad.Engine, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		engine: engine,
		log:    logger.Get("diarization"),
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.fallbacks, _ = otel.Meter(instrumentationName).Int64Counter(
		"sonix.diarization.fallbacks",
		metric.WithDescription("Number of diarization attempts degraded to binary segmentation."),
	)
	return a
}

// DiarizeFile decodes the audio at req.AudioPath and diarizes it. Decode
// failures are fatal; everything past decoding degrades instead of failing.
func (a *Adapter) DiarizeFile(ctx context.Context, req Request) (*Response, error) {
	w, err := audio.ReadFile(req.AudioPath)
	if err != nil {
		return nil, err
	}
	return a.Diarize(ctx, w, req)
}

// Diarize diarizes an already decoded waveform. req.AudioPath is only
// forwarded to the backend; the fallback tier works on the waveform alone.
func (a *Adapter) Diarize(ctx context.Context, w audio.Waveform, req Request) (*Response, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	ctx, span := a.tracer.Start(ctx, "diarization.Diarize", trace.WithAttributes(
		attribute.Int("audio.sample_rate", w.SampleRate),
		attribute.Int("audio.samples", len(w.Samples)),
	))
	defer span.End()

	if a.credential != "" && a.provider != nil {
		resp, err := a.tryProvider(ctx, req)
		if err == nil {
			span.SetAttributes(
				attribute.String("diarization.source", a.provider.Name()),
				attribute.Int("diarization.speakers", resp.NumSpeakers),
			)
			return resp, nil
		}
		a.log.Warn("diarization backend failed, degrading to binary segmentation", map[string]interface{}{
			logger.FieldBackend: a.provider.Name(),
			logger.FieldError:   err.Error(),
		})
		a.fallbacks.Add(ctx, 1, metric.WithAttributes(
			attribute.String("backend", a.provider.Name()),
		))
	}

	segs, err := a.engine.Detect(ctx, w)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("diarization.source", "vad"))
	return degradedResponse(segs), nil
}

// tryProvider runs the diarization tier. Panics, unavailability and
// malformed responses all come back as recoverable errors.
func (a *Adapter) tryProvider(ctx context.Context, req Request) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = errors.BackendFailed(a.provider.Name(), fmt.Errorf("panic: %v", r))
		}
	}()

	if !a.provider.IsAvailable(ctx) {
		return nil, errors.BackendFailed(a.provider.Name(), fmt.Errorf("backend unavailable"))
	}

	resp, err = a.provider.Diarize(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Timeout("diarization.Diarize").WithCause(err)
		}
		return nil, errors.BackendFailed(a.provider.Name(), err)
	}
	if resp == nil || len(resp.Segments) == 0 {
		return nil, errors.MalformedOutput(a.provider.Name(), "empty segment list")
	}
	for _, s := range resp.Segments {
		if s.End <= s.Start || s.Speaker == "" {
			return nil, errors.MalformedOutput(a.provider.Name(),
				fmt.Sprintf("invalid segment [%v,%v] speaker %q", s.Start, s.End, s.Speaker))
		}
	}
	return resp, nil
}

// degradedResponse maps the binary timeline onto the diarization shape.
// Labels stand in for speaker identities.
func degradedResponse(segs []vad.Segment) *Response {
	out := make([]Segment, len(segs))
	speakers := 0
	for i, s := range segs {
		out[i] = Segment{
			Speaker: s.Label,
			Start:   s.StartTimeSec,
			End:     s.EndTimeSec,
			Text:    s.Transcript,
		}
		if s.Label == vad.LabelSpeech && speakers == 0 {
			speakers = 1
		}
	}
	return &Response{Segments: out, NumSpeakers: speakers, Degraded: true}
}

package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/skillsenselab/sonix/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// PipelineMetrics holds metric instruments for the segmentation pipeline.
type PipelineMetrics struct {
	detectTotal     metric.Int64Counter
	detectDuration  metric.Float64Histogram
	analyzeTotal    metric.Int64Counter
	analyzeDuration metric.Float64Histogram
}

// NewPipelineMetrics creates metric instruments on the given meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	detectTotal, err := meter.Int64Counter("sonix.detect.total",
		metric.WithDescription("Total number of segmentation runs by tier"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sonix.detect.total counter: %w", err)
	}

	detectDuration, err := meter.Float64Histogram("sonix.detect.duration",
		metric.WithDescription("Duration of segmentation runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sonix.detect.duration histogram: %w", err)
	}

	analyzeTotal, err := meter.Int64Counter("sonix.analyze.total",
		metric.WithDescription("Total number of analysis runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sonix.analyze.total counter: %w", err)
	}

	analyzeDuration, err := meter.Float64Histogram("sonix.analyze.duration",
		metric.WithDescription("Duration of analysis runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sonix.analyze.duration histogram: %w", err)
	}

	return &PipelineMetrics{
		detectTotal:     detectTotal,
		detectDuration:  detectDuration,
		analyzeTotal:    analyzeTotal,
		analyzeDuration: analyzeDuration,
	}, nil
}

// RecordDetect records a completed segmentation run and the tier that
// produced it.
func (m *PipelineMetrics) RecordDetect(ctx context.Context, tier string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("tier", tier))
	m.detectTotal.Add(ctx, 1, attrs)
	m.detectDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordAnalyze records a completed analysis run.
func (m *PipelineMetrics) RecordAnalyze(ctx context.Context, status string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.analyzeTotal.Add(ctx, 1, attrs)
	m.analyzeDuration.Record(ctx, duration.Seconds(), attrs)
}

// Package observability provides OpenTelemetry tracing and metrics setup
// for the segmentation pipeline.
//
//	shutdown, err := observability.Setup(ctx, cfg, "sonix", version.Version)
//	defer shutdown(ctx)
//
// The vad engine, the diarization adapter and the analyzer pick up the
// global tracer and meter providers installed here.
package observability

// Command sonix analyzes a WAV recording: it segments speech and silence,
// extracts acoustic features and prints the report as indented JSON.
// Without an argument it synthesizes a small mock recording first.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/skillsenselab/sonix/analysis"
	"github.com/skillsenselab/sonix/audio"
	"github.com/skillsenselab/sonix/config"
	"github.com/skillsenselab/sonix/diarization"
	"github.com/skillsenselab/sonix/diarization/pyannote"
	"github.com/skillsenselab/sonix/logger"
	"github.com/skillsenselab/sonix/observability"
	"github.com/skillsenselab/sonix/provider"
	"github.com/skillsenselab/sonix/testutil"
	"github.com/skillsenselab/sonix/transcription/whisper"
	"github.com/skillsenselab/sonix/vad"
	"github.com/skillsenselab/sonix/vad/silero"
	"github.com/skillsenselab/sonix/version"
)

const (
	mockFileName   = "mock_audio.wav"
	mockSampleRate = 16000
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "explicit config file path")
	diarize := flag.Bool("diarize", false, "print speaker diarization instead of the full analysis")
	info := flag.Bool("info", false, "print WAV header metadata and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetShortVersion())
		return
	}

	var loaderOpts []config.LoaderOption
	if *configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(*configFile))
	}
	cfg, err := config.Load(loaderOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sonix: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)
	logger.RegisterDefaults("vad", "diarization", "analysis")
	log := logger.WithComponent("main")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdown, err := observability.Setup(ctx, cfg.Observability, config.ServiceName, version.Version)
	if err != nil {
		log.Warn("observability setup failed, continuing without exporters", logger.Fields(
			logger.FieldError, err.Error(),
		))
		shutdown = func(context.Context) error { return nil }
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		_ = shutdown(flushCtx)
	}()

	path, err := resolveInput(flag.Arg(0), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sonix: %v\n", err)
		os.Exit(1)
	}

	engine, err := buildEngine(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sonix: %v\n", err)
		os.Exit(1)
	}

	var result any
	switch {
	case *info:
		result, err = audio.Info(path)
	case *diarize:
		result, err = runDiarization(ctx, cfg, engine, path)
	default:
		result, err = runAnalysis(ctx, cfg, engine, path)
	}
	if err != nil {
		log.WithError(err).Error("pipeline failed", logger.Fields(logger.FieldSource, path))
		fmt.Fprintf(os.Stderr, "sonix: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "sonix: encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// resolveInput returns the WAV path to analyze, synthesizing the mock
// recording when no argument was given.
func resolveInput(arg string, log *logger.Logger) (string, error) {
	if arg != "" {
		if !strings.EqualFold(filepath.Ext(arg), ".wav") {
			return "", fmt.Errorf("input must be a .wav file, got %q", arg)
		}
		if _, err := os.Stat(arg); err != nil {
			return "", fmt.Errorf("input file not found: %s", arg)
		}
		return arg, nil
	}

	if _, err := os.Stat(mockFileName); err != nil {
		log.Info("creating mock recording", logger.Fields(logger.FieldSource, mockFileName))
		if err := audio.WriteFile(mockFileName, mockRecording(mockSampleRate)); err != nil {
			return "", err
		}
	}
	return mockFileName, nil
}

// buildEngine assembles the vad engine. Enabled neural backends register
// through the provider registry and the first available one in priority
// order is attached; with none available the energy detector is the sole
// tier.
func buildEngine(ctx context.Context, cfg *config.Config, log *logger.Logger) (*vad.Engine, error) {
	backends := vad.NewBackendRegistry()
	if cfg.Silero.Enabled {
		backends.RegisterFactory(silero.ProviderName, silero.Factory())
	}

	instances := make(map[string]vad.Backend)
	for _, name := range backends.List() {
		b, err := backends.Create(name, map[string]any{
			"model_path":   cfg.Silero.ModelPath,
			"library_path": cfg.Silero.LibraryPath,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s backend: %w", name, err)
		}
		instances[name] = b
	}

	var opts []vad.Option
	if len(instances) > 0 {
		sel := &provider.PrioritySelector[vad.Backend]{Priority: backends.List()}
		backend, err := sel.Select(ctx, instances)
		if err != nil {
			log.Warn("no neural vad backend available, using the energy detector", logger.Fields(
				logger.FieldError, err.Error(),
			))
		} else {
			log.Info("neural vad backend enabled", logger.Fields(
				logger.FieldBackend, backend.Name(),
				logger.FieldSource, cfg.Silero.ModelPath,
			))
			opts = append(opts, vad.WithBackend(backend))
		}
	}
	return vad.NewEngine(cfg.Vad, opts...), nil
}

func runDiarization(ctx context.Context, cfg *config.Config, engine *vad.Engine, path string) (*diarization.Response, error) {
	opts := []diarization.AdapterOption{
		diarization.WithCredential(cfg.Diarization.Credential),
	}
	if cfg.Diarization.Credential != "" {
		opts = append(opts, diarization.WithProvider(pyannote.NewProvider(pyannote.Config{
			BaseURL: cfg.Diarization.BaseURL,
			Timeout: time.Duration(cfg.Diarization.TimeoutSec) * time.Second,
			HFToken: cfg.Diarization.Credential,
		})))
	}
	adapter := diarization.NewAdapter(engine, opts...)
	return adapter.DiarizeFile(ctx, diarization.Request{AudioPath: path})
}

func runAnalysis(ctx context.Context, cfg *config.Config, engine *vad.Engine, path string) (*analysis.Report, error) {
	var opts []analysis.Option
	if cfg.Transcription.Enabled {
		opts = append(opts, analysis.WithTranscriber(whisper.NewProvider(whisper.Config{
			BaseURL: cfg.Transcription.BaseURL,
			Model:   cfg.Transcription.Model,
			Timeout: time.Duration(cfg.Transcription.TimeoutSec) * time.Second,
		})))
	}
	analyzer := analysis.NewAnalyzer(engine, opts...)
	return analyzer.AnalyzeFile(ctx, path)
}

// mockRecording builds the 4.5 second tone/silence/tone fixture: two
// seconds of a 220 Hz tone, one of silence, then 1.5 seconds of a 300 Hz
// tone.
func mockRecording(sampleRate int) audio.Waveform {
	parts := []audio.Waveform{
		testutil.Sine(sampleRate, 2.0, 220.0, 0.5),
		testutil.Silence(sampleRate, 1.0),
		testutil.Sine(sampleRate, 1.5, 300.0, 0.4),
	}
	var samples []float64
	for _, p := range parts {
		samples = append(samples, p.Samples...)
	}
	return audio.Waveform{Samples: samples, SampleRate: sampleRate}
}

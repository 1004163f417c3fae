// Package silero provides a neural VAD backend running Silero VAD v5
// inference through ONNX Runtime. It is the preferred tier of the vad
// Engine; every failure mode here is recoverable and degrades to the
// energy detector.
package silero

import (
	"context"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/skillsenselab/sonix/audio"
	"github.com/skillsenselab/sonix/provider"
	"github.com/skillsenselab/sonix/vad"
)

const (
	// ProviderName is the registered name for the Silero backend.
	ProviderName = "silero"

	// windowSize is the number of float32 samples per inference call.
	// Silero VAD v5 at 16 kHz requires exactly 512 samples (32 ms).
	windowSize = 512

	// stateSize is the hidden state dimension per layer. Silero VAD v5
	// uses a combined state tensor of shape [2, 1, 128].
	stateSize = 128

	// expectedSampleRate is the only sample rate the model accepts.
	expectedSampleRate = 16000
)

// ortInitOnce ensures the ONNX Runtime environment is initialized exactly
// once. The error is kept at package scope so later backends surface the
// failure instead of proceeding with an uninitialized environment.
var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// Config holds configuration for the Silero backend.
type Config struct {
	// ModelPath is the path to the silero_vad.onnx model file.
	ModelPath string `json:"model_path" mapstructure:"model_path"`
	// LibraryPath is the path to the ONNX Runtime shared library.
	LibraryPath string `json:"library_path" mapstructure:"library_path"`
}

// Backend implements vad.Backend using Silero VAD v5 via ONNX Runtime.
// The session is created lazily on first use and reused afterwards.
type Backend struct {
	cfg Config

	mu      sync.Mutex
	session *ort.AdvancedSession

	inputTensor  *ort.Tensor[float32] // [1, 512]
	stateTensor  *ort.Tensor[float32] // [2, 1, 128]
	srTensor     *ort.Tensor[int64]   // scalar
	outputTensor *ort.Tensor[float32] // [1, 1]
	stateNTensor *ort.Tensor[float32] // [2, 1, 128]
}

// NewBackend creates a Silero backend. No model is loaded until the first
// Probabilities call.
func NewBackend(cfg Config) *Backend {
	return &Backend{cfg: cfg}
}

// Factory returns a provider.Factory that creates Silero backends from a
// generic config map.
func Factory() provider.Factory[vad.Backend] {
	return func(cfg map[string]any) (vad.Backend, error) {
		sc := Config{}
		if v, ok := cfg["model_path"].(string); ok {
			sc.ModelPath = v
		}
		if v, ok := cfg["library_path"].(string); ok {
			sc.LibraryPath = v
		}
		return NewBackend(sc), nil
	}
}

// Name returns the provider name.
func (b *Backend) Name() string { return ProviderName }

// IsAvailable reports whether the model file is present.
func (b *Backend) IsAvailable(_ context.Context) bool {
	info, err := os.Stat(b.cfg.ModelPath)
	return err == nil && !info.IsDir()
}

// Probabilities runs the waveform through the model in 512-sample windows
// and returns one probability window per inference. The final partial
// window is zero-padded.
func (b *Backend) Probabilities(ctx context.Context, w audio.Waveform) ([]vad.Window, error) {
	if w.SampleRate != expectedSampleRate {
		return nil, fmt.Errorf("silero: sample rate %d not supported, want %d", w.SampleRate, expectedSampleRate)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureSession(); err != nil {
		return nil, err
	}

	// fresh RNN state per waveform
	clearFloat32Slice(b.stateTensor.GetData())

	n := len(w.Samples)
	numWindows := (n + windowSize - 1) / windowSize
	windows := make([]vad.Window, 0, numWindows)
	frame := make([]float32, windowSize)

	for i := 0; i < numWindows; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := i * windowSize
		end := start + windowSize
		if end > n {
			end = n
		}
		for j := range frame {
			if start+j < end {
				frame[j] = float32(w.Samples[start+j])
			} else {
				frame[j] = 0
			}
		}

		prob, err := b.infer(frame)
		if err != nil {
			return nil, err
		}
		windows = append(windows, vad.Window{
			StartSec:    float64(start) / expectedSampleRate,
			EndSec:      float64(end) / expectedSampleRate,
			Probability: float64(prob),
		})
	}
	return windows, nil
}

// Close releases ONNX Runtime resources. Safe to call multiple times.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session != nil {
		b.session.Destroy()
		b.session = nil
	}
	for _, t := range []*ort.Tensor[float32]{b.inputTensor, b.stateTensor, b.outputTensor, b.stateNTensor} {
		if t != nil {
			t.Destroy()
		}
	}
	if b.srTensor != nil {
		b.srTensor.Destroy()
		b.srTensor = nil
	}
	b.inputTensor, b.stateTensor, b.outputTensor, b.stateNTensor = nil, nil, nil, nil
	return nil
}

// ensureSession initializes ONNX Runtime and builds the session on first
// use. Callers hold b.mu.
func (b *Backend) ensureSession() error {
	if b.session != nil {
		return nil
	}

	ortInitOnce.Do(func() {
		if b.cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(b.cfg.LibraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return fmt.Errorf("silero: %w", ortInitErr)
	}

	modelData, err := os.ReadFile(b.cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("silero: read model: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, windowSize))
	if err != nil {
		return fmt.Errorf("silero: create input tensor: %w", err)
	}
	stateTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, stateSize))
	if err != nil {
		inputTensor.Destroy()
		return fmt.Errorf("silero: create state tensor: %w", err)
	}
	srTensor, err := ort.NewTensor(ort.NewShape(1), []int64{expectedSampleRate})
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		return fmt.Errorf("silero: create sr tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		return fmt.Errorf("silero: create output tensor: %w", err)
	}
	stateNTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, stateSize))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		return fmt.Errorf("silero: create stateN tensor: %w", err)
	}

	clearFloat32Slice(stateTensor.GetData())
	clearFloat32Slice(stateNTensor.GetData())

	session, err := ort.NewAdvancedSessionWithONNXData(
		modelData,
		[]string{"input", "state", "sr"},
		[]string{"output", "stateN"},
		[]ort.Value{inputTensor, stateTensor, srTensor},
		[]ort.Value{outputTensor, stateNTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		stateNTensor.Destroy()
		return fmt.Errorf("silero: create session: %w", err)
	}

	b.session = session
	b.inputTensor = inputTensor
	b.stateTensor = stateTensor
	b.srTensor = srTensor
	b.outputTensor = outputTensor
	b.stateNTensor = stateNTensor
	return nil
}

// infer runs a single inference on exactly 512 float32 samples.
func (b *Backend) infer(frame []float32) (float32, error) {
	copy(b.inputTensor.GetData(), frame)

	if err := b.session.Run(); err != nil {
		return 0, fmt.Errorf("silero: inference: %w", err)
	}

	prob := b.outputTensor.GetData()[0]

	// carry forward hidden state: stateN -> state
	copy(b.stateTensor.GetData(), b.stateNTensor.GetData())

	return prob, nil
}

func clearFloat32Slice(s []float32) {
	for i := range s {
		s[i] = 0
	}
}

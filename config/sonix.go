package config

import (
	"fmt"

	"github.com/skillsenselab/sonix/logger"
	"github.com/skillsenselab/sonix/observability"
	"github.com/skillsenselab/sonix/vad"
	"github.com/skillsenselab/sonix/validation"
)

// ServiceName is the name the loader searches config files under.
const ServiceName = "sonix"

// SileroConfig configures the neural VAD backend.
type SileroConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ModelPath is the path to the silero_vad.onnx model file.
	ModelPath string `yaml:"model_path" mapstructure:"model_path"`
	// LibraryPath is the path to the ONNX Runtime shared library.
	LibraryPath string `yaml:"library_path" mapstructure:"library_path"`
}

// DiarizationConfig configures the speaker diarization tier.
type DiarizationConfig struct {
	// Credential is the Hugging Face token that enables the neural
	// diarization tier. Empty keeps the adapter on the fallback path.
	Credential string `yaml:"credential" mapstructure:"credential"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec" mapstructure:"timeout_sec" validate:"gte=0"`
}

// TranscriptionConfig configures the speech-to-text tier.
type TranscriptionConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	Model      string `yaml:"model" mapstructure:"model"`
	TimeoutSec int    `yaml:"timeout_sec" mapstructure:"timeout_sec" validate:"gte=0"`
}

// Config is the full application configuration.
type Config struct {
	Environment   string               `yaml:"environment" mapstructure:"environment"`
	Debug         bool                 `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Vad           vad.Config           `yaml:"vad" mapstructure:"vad"`
	Silero        SileroConfig         `yaml:"silero" mapstructure:"silero"`
	Diarization   DiarizationConfig    `yaml:"diarization" mapstructure:"diarization"`
	Transcription TranscriptionConfig  `yaml:"transcription" mapstructure:"transcription"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// Default returns the configuration used when no file or environment
// overrides anything.
func Default() Config {
	cfg := Config{Vad: vad.DefaultConfig()}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in defaults for everything left unset.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the configuration before the pipeline starts.
func (c *Config) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := validation.Validate(c.Vad); err != nil {
		return fmt.Errorf("config.vad: %w", err)
	}
	if err := validation.Validate(c.Diarization); err != nil {
		return fmt.Errorf("config.diarization: %w", err)
	}
	if err := validation.Validate(c.Transcription); err != nil {
		return fmt.Errorf("config.transcription: %w", err)
	}
	if err := validation.Validate(c.Observability); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	return nil
}

// Load loads, defaults and validates the application configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	cfg := Config{Vad: vad.DefaultConfig()}
	if err := LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

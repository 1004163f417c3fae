package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool   { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestLoadWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
environment: staging
vad:
  top_db: 30
  min_silence_gap_sec: 0.5
diarization:
  credential: hf_test_token
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(WithConfigFile(configPath))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Vad.TopDB != 30 {
		t.Errorf("expected top_db 30, got %v", cfg.Vad.TopDB)
	}
	if cfg.Vad.MinSilenceGapSec != 0.5 {
		t.Errorf("expected min_silence_gap_sec 0.5, got %v", cfg.Vad.MinSilenceGapSec)
	}
	// unset keys keep their defaults
	if cfg.Vad.NeuralThreshold != 0.5 {
		t.Errorf("expected default neural_threshold 0.5, got %v", cfg.Vad.NeuralThreshold)
	}
	if cfg.Diarization.Credential != "hf_test_token" {
		t.Errorf("expected credential from file, got %q", cfg.Diarization.Credential)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(WithConfigFile("/nonexistent/path.yml"), WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("expected Load to succeed with missing file, got %v", err)
	}
	if cfg.Vad.TopDB != 40 {
		t.Errorf("expected default top_db 40, got %v", cfg.Vad.TopDB)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected default environment, got %q", cfg.Environment)
	}
	if !cfg.Debug {
		t.Error("expected debug=true in development")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
vad:
  neural_threshold: 1.5
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := Load(WithConfigFile(configPath))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "neural_threshold") {
		t.Errorf("error %q does not name the offending field", err.Error())
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/sonix/config.yml": true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("sonix", LoaderConfig{})
	if files.ConfigFile != "./cmd/sonix/config.yml" {
		t.Errorf("expected config file at ./cmd/sonix/config.yml, got %q", files.ConfigFile)
	}
}

func TestResolverPrefersServiceEnvFile(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./.env":       true,
		"./.env.sonix": true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("sonix", LoaderConfig{})
	if files.EnvFile != "./.env.sonix" {
		t.Errorf("expected service-scoped env file, got %q", files.EnvFile)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("VAD_TOP_DB")
	want := map[string]bool{
		"vad_top_db": true,
		"vad.top.db": true,
		"vad.top_db": true,
	}
	for w := range want {
		found := false
		for _, v := range variants {
			if v == w {
				found = true
			}
		}
		if !found {
			t.Errorf("missing variant %q in %v", w, variants)
		}
	}
}

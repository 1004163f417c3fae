package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/skillsenselab/sonix/errors"
	"github.com/skillsenselab/sonix/transcription"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("RIFF....WAVE"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProvider_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "small" {
			t.Errorf("model = %q, want %q", got, "small")
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language = %q, want %q", got, "en")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"text": "hello world out there",
			"segments": [
				{"text": "hello world", "start": 0.0, "end": 1.2},
				{"text": "out there", "start": 1.2, "end": 2.4}
			],
			"language": "en"
		}`))
	}))
	defer server.Close()

	p := NewProvider(Config{BaseURL: server.URL, Model: "small", Language: "en"})
	resp, err := p.Transcribe(context.Background(), transcription.Request{
		AudioPath: writeTempAudio(t),
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Text != "hello world out there" {
		t.Errorf("Text = %q", resp.Text)
	}
	if got := resp.WordCount(); got != 4 {
		t.Errorf("WordCount() = %d, want 4", got)
	}
	if resp.Duration != 2.4 {
		t.Errorf("Duration = %v, want 2.4", resp.Duration)
	}
	if len(resp.Segments) != 2 {
		t.Errorf("got %d segments, want 2", len(resp.Segments))
	}
}

func TestProvider_TranscribeRequestOverrides(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "large-v3" {
			t.Errorf("model = %q, want request override", got)
		}
		w.Write([]byte(`{"text": "", "segments": [], "language": "en"}`))
	}))
	defer server.Close()

	p := NewProvider(Config{BaseURL: server.URL, Model: "base"})
	_, err := p.Transcribe(context.Background(), transcription.Request{
		AudioPath: writeTempAudio(t),
		Model:     "large-v3",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
}

func TestProvider_TranscribeErrors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode apperrors.ErrorCode
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model load failed", http.StatusInternalServerError)
			},
			wantCode: apperrors.ErrCodeBackendFailed,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
			wantCode: apperrors.ErrCodeMalformedOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			p := NewProvider(Config{BaseURL: server.URL})
			_, err := p.Transcribe(context.Background(), transcription.Request{
				AudioPath: writeTempAudio(t),
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.GetCode(err); got != tt.wantCode {
				t.Errorf("error code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestProvider_Defaults(t *testing.T) {
	p := NewProvider(Config{})
	if p.cfg.BaseURL != defaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", p.cfg.BaseURL, defaultBaseURL)
	}
	if p.cfg.Model != defaultModel {
		t.Errorf("Model = %q, want %q", p.cfg.Model, defaultModel)
	}
	if p.cfg.Timeout != defaultTimeout {
		t.Errorf("Timeout = %v, want %v", p.cfg.Timeout, defaultTimeout)
	}
	if p.Name() != ProviderName {
		t.Errorf("Name() = %q, want %q", p.Name(), ProviderName)
	}
}

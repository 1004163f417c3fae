package pyannote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/skillsenselab/sonix/diarization"
	apperrors "github.com/skillsenselab/sonix/errors"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("RIFF....WAVE"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProvider_Diarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/diarize" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer hf_test" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("num_speakers"); got != "2" {
			t.Errorf("num_speakers = %q, want %q", got, "2")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"segments": [
				{"speaker_id": "SPEAKER_00", "start_time": 0.0, "end_time": 1.5},
				{"speaker_id": "SPEAKER_01", "start_time": 1.5, "end_time": 3.0, "text": "hi"}
			],
			"num_speakers": 2
		}`))
	}))
	defer server.Close()

	p := NewProvider(Config{BaseURL: server.URL, HFToken: "hf_test"})
	resp, err := p.Diarize(context.Background(), diarization.Request{
		AudioPath:   writeTempAudio(t),
		NumSpeakers: 2,
	})
	if err != nil {
		t.Fatalf("Diarize: %v", err)
	}
	if resp.NumSpeakers != 2 {
		t.Errorf("NumSpeakers = %d, want 2", resp.NumSpeakers)
	}
	if len(resp.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(resp.Segments))
	}
	if resp.Segments[0].Speaker != "SPEAKER_00" || resp.Segments[0].End != 1.5 {
		t.Errorf("unexpected first segment: %+v", resp.Segments[0])
	}
	if resp.Segments[1].Text != "hi" {
		t.Errorf("second segment text = %q", resp.Segments[1].Text)
	}
}

func TestProvider_DiarizeErrors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode apperrors.ErrorCode
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantCode: apperrors.ErrCodeUnauthorized,
		},
		{
			name: "forbidden",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			wantCode: apperrors.ErrCodeUnauthorized,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "pipeline load failed", http.StatusInternalServerError)
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
		{
			name: "sidecar error field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error": "model not loaded"}`))
			},
			wantCode: apperrors.ErrCodeBackendFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			p := NewProvider(Config{BaseURL: server.URL})
			_, err := p.Diarize(context.Background(), diarization.Request{
				AudioPath: writeTempAudio(t),
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.GetCode(err); got != tt.wantCode {
				t.Errorf("error code = %q, want %q", got, tt.wantCode)
			}
			if !apperrors.IsRecoverable(err) {
				t.Error("sidecar failure must be recoverable")
			}
		})
	}
}

func TestProvider_DiarizeMissingFile(t *testing.T) {
	p := NewProvider(Config{})
	_, err := p.Diarize(context.Background(), diarization.Request{
		AudioPath: "/nonexistent/audio.wav",
	})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if got := apperrors.GetCode(err); got != apperrors.ErrCodeDecodeFailed {
		t.Errorf("error code = %q, want %q", got, apperrors.ErrCodeDecodeFailed)
	}
}

func TestProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := NewProvider(Config{BaseURL: server.URL})
	if !p.IsAvailable(context.Background()) {
		t.Error("healthy sidecar must report available")
	}

	server.Close()
	if p.IsAvailable(context.Background()) {
		t.Error("unreachable sidecar must report unavailable")
	}
}

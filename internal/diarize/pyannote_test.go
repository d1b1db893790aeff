package diarize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestPyannote_Diarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer hf_test" {
			t.Errorf("Authorization = %q", auth)
		}
		if ct := r.Header.Get("Content-Type"); ct != "audio/wav" {
			t.Errorf("Content-Type = %q", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"speaker": "SPEAKER_00", "start": 0.0, "end": 4.2},
			{"speaker": "SPEAKER_01", "start": 4.5, "end": 9.1}
		]`))
	}))
	defer server.Close()

	wavPath := filepath.Join(t.TempDir(), "segment_001.wav")
	if err := os.WriteFile(wavPath, []byte("RIFF fake"), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewPyannoteWithBaseURL("hf_test", server.URL)
	turns, err := p.Diarize(context.Background(), wavPath, nil)
	if err != nil {
		t.Fatalf("Diarize() error: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(turns))
	}
	if turns[0].Speaker != "SPEAKER_00" || turns[0].End != 4.2 {
		t.Errorf("turn 0 = %+v", turns[0])
	}
	if turns[1].Speaker != "SPEAKER_01" || turns[1].Start != 4.5 {
		t.Errorf("turn 1 = %+v", turns[1])
	}
}

func TestPyannote_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "Model is currently loading"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	wavPath := filepath.Join(t.TempDir(), "segment_001.wav")
	if err := os.WriteFile(wavPath, []byte("RIFF fake"), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewPyannoteWithBaseURL("hf_test", server.URL)
	if _, err := p.Diarize(context.Background(), wavPath, nil); err == nil {
		t.Error("Diarize() did not surface the API error")
	}
}

func TestPyannote_MissingFile(t *testing.T) {
	p := NewPyannote("hf_test")
	if _, err := p.Diarize(context.Background(), "/no/such/file.wav", nil); err == nil {
		t.Error("Diarize() with missing file did not fail")
	}
}

func TestParsePyannoteResponse_DropsDegenerateTurns(t *testing.T) {
	turns, err := parsePyannoteResponse([]byte(`[
		{"speaker": "SPEAKER_00", "start": 1.0, "end": 1.0},
		{"speaker": "SPEAKER_00", "start": 3.0, "end": 2.0},
		{"speaker": "SPEAKER_01", "start": 2.0, "end": 5.0}
	]`))
	if err != nil {
		t.Fatalf("parsePyannoteResponse() error: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("got %d turns, want 1", len(turns))
	}
	if turns[0].Speaker != "SPEAKER_01" {
		t.Errorf("kept turn = %+v", turns[0])
	}
}

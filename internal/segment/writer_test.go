package segment

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{1, "segment_001.wav"},
		{12, "segment_012.wav"},
		{123, "segment_123.wav"},
		{1234, "segment_1234.wav"},
	}
	for _, tt := range tests {
		if got := FileName(tt.index); got != tt.want {
			t.Errorf("FileName(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestWriter_WritesValidWav(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 16000, 1)

	pcm := make([]byte, 32000) // 1 second of silence-ish ramp
	for i := range pcm {
		pcm[i] = byte(i % 7)
	}

	path, err := w.Write(&Segment{Index: 1, PCM: pcm, Duration: time.Second})
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if filepath.Base(path) != "segment_001.wav" {
		t.Errorf("wrote %s, want segment_001.wav", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open written file: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("written file is not a valid WAV")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode written file: %v", err)
	}
	if got := len(buf.Data); got != 16000 {
		t.Errorf("decoded %d samples, want 16000", got)
	}
	if buf.Format.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", buf.Format.SampleRate)
	}
	if buf.Format.NumChannels != 1 {
		t.Errorf("channels = %d, want 1", buf.Format.NumChannels)
	}
}

func TestWriter_RoundTripsSamples(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 16000, 1)

	// A few known samples, little-endian s16.
	samples := []int16{0, 1, -1, 32767, -32768, 1000}
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		pcm[2*i] = byte(uint16(s))
		pcm[2*i+1] = byte(uint16(s) >> 8)
	}

	path, err := w.Write(&Segment{Index: 2, PCM: pcm})
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i, want := range samples {
		if int16(buf.Data[i]) != want {
			t.Errorf("sample %d = %d, want %d", i, buf.Data[i], want)
		}
	}
}

func TestWriter_Deterministic(t *testing.T) {
	pcm := make([]byte, 4096)
	for i := range pcm {
		pcm[i] = byte(i * 31)
	}

	write := func() []byte {
		dir := t.TempDir()
		w := NewWriter(dir, 16000, 1)
		path, err := w.Write(&Segment{Index: 1, PCM: pcm})
		if err != nil {
			t.Fatalf("Write() error: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	if !bytes.Equal(write(), write()) {
		t.Error("identical segments produced different WAV bytes")
	}
}

func TestWriter_BadDirectory(t *testing.T) {
	w := NewWriter("/nonexistent/path/for/sure", 16000, 1)
	if _, err := w.Write(&Segment{Index: 1, PCM: make([]byte, 2)}); err == nil {
		t.Error("Write() to bad directory did not fail")
	}
}

package audio

import "testing"

func TestIsWav(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"recording.wav", true},
		{"recording.WAV", true},
		{"/tmp/session/segment_001.wav", true},
		{"recording.mp3", false},
		{"recording.wav.mp3", false},
		{"recording", false},
	}
	for _, tt := range tests {
		if got := IsWav(tt.path); got != tt.want {
			t.Errorf("IsWav(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLastLine(t *testing.T) {
	if got := lastLine("a\nb\nc\n"); got != "c" {
		t.Errorf("lastLine = %q, want %q", got, "c")
	}
	if got := lastLine(""); got != "" {
		t.Errorf("lastLine of empty = %q", got)
	}
}

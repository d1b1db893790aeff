package tui

import (
	"strings"
	"testing"
)

func TestValidateSegmentMinutes(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "5", false},
		{"minimum", "1", false},
		{"maximum", "60", false},
		{"with whitespace", " 10 ", false},
		{"zero", "0", true},
		{"negative", "-3", true},
		{"too large", "61", true},
		{"not a number", "five", true},
		{"empty", "", true},
		{"fractional", "2.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSegmentMinutes(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSegmentMinutes(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := maskAPIKey("short"); got != "***" {
		t.Errorf("short key should be fully masked, got %q", got)
	}

	got := maskAPIKey("sk-proj-abcdefghijklmnop")
	if !strings.HasPrefix(got, "sk-proj") || !strings.HasSuffix(got, "mnop") {
		t.Errorf("masked key should keep prefix and suffix, got %q", got)
	}
	if strings.Contains(got, "abcdefghijkl") {
		t.Errorf("masked key leaks the middle: %q", got)
	}
}

func TestTranscriptionModelOptions(t *testing.T) {
	openai := transcriptionModelOptions("openai")
	if len(openai) != 1 || openai[0].Value != "whisper-1" {
		t.Errorf("openai backend should offer whisper-1, got %v", openai)
	}

	local := transcriptionModelOptions("whisper-cli")
	if len(local) == 0 {
		t.Fatal("whisper-cli backend should list the model catalog")
	}
	if !hasOption(local, "large-v3") || !hasOption(local, "tiny") {
		t.Errorf("catalog missing expected models: %v", local)
	}

	if got := transcriptionModelOptions("unknown"); got != nil {
		t.Errorf("unknown backend should return nil, got %v", got)
	}
}

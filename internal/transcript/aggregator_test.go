package transcript

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lfauchon/murmure/internal/transcriber"
)

func readMaster(t *testing.T, a *Aggregator) string {
	t.Helper()
	data, err := os.ReadFile(a.MasterPath())
	if err != nil {
		t.Fatalf("read master file: %v", err)
	}
	return string(data)
}

func TestAggregator_Init(t *testing.T) {
	a := NewAggregator(t.TempDir(), false)
	started := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)
	if err := a.Init("base", started); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	content := readMaster(t, a)
	if !strings.Contains(content, "TRANSCRIPTION SESSION - 2026-08-30 14:05:00") {
		t.Errorf("missing session banner:\n%s", content)
	}
	if !strings.Contains(content, "Model: base") {
		t.Errorf("missing model line:\n%s", content)
	}
}

func TestAggregator_OrderedConcatenation(t *testing.T) {
	a := NewAggregator(t.TempDir(), false)
	if err := a.Init("base", time.Now()); err != nil {
		t.Fatal(err)
	}

	texts := []string{"premier segment", "deuxième segment", "troisième segment"}
	for i, text := range texts {
		if err := a.AppendSegment(i+1, text); err != nil {
			t.Fatalf("AppendSegment(%d) error: %v", i+1, err)
		}
	}

	content := readMaster(t, a)
	lastPos := -1
	for i, text := range texts {
		marker := "--- SEGMENT " + string(rune('1'+i)) + " ---"
		pos := strings.Index(content, marker)
		if pos < 0 {
			t.Fatalf("missing marker %q", marker)
		}
		if pos < lastPos {
			t.Errorf("segment %d out of order", i+1)
		}
		lastPos = pos
		if !strings.Contains(content, text) {
			t.Errorf("missing text %q", text)
		}
		if strings.Count(content, text) != 1 {
			t.Errorf("text %q duplicated", text)
		}
	}
}

func TestAggregator_FailureMarkerIsVisible(t *testing.T) {
	a := NewAggregator(t.TempDir(), false)
	if err := a.Init("base", time.Now()); err != nil {
		t.Fatal(err)
	}

	a.AppendSegment(1, "ok before")
	a.AppendFailure(2, errors.New("api timeout"))
	a.AppendSegment(3, "ok after")

	content := readMaster(t, a)
	if !strings.Contains(content, "--- SEGMENT 2 ---") {
		t.Error("failed segment has no marker")
	}
	if !strings.Contains(content, "[transcription failed: api timeout]") {
		t.Error("failure placeholder missing")
	}

	// failure must sit between its neighbors
	if !(strings.Index(content, "ok before") < strings.Index(content, "api timeout") &&
		strings.Index(content, "api timeout") < strings.Index(content, "ok after")) {
		t.Error("failure marker out of order")
	}
}

func TestAggregator_Diarized(t *testing.T) {
	dir := t.TempDir()
	a := NewAggregator(dir, true)
	if err := a.Init("medium", time.Now()); err != nil {
		t.Fatal(err)
	}

	utterances := []transcriber.Utterance{
		{Speaker: "SPEAKER_00", Start: 0, End: 3, Text: "Bonjour à tous."},
		{Speaker: "SPEAKER_00", Start: 3, End: 5, Text: "Bienvenue."},
		{Speaker: "SPEAKER_01", Start: 65, End: 70, Text: "Merci."},
	}

	if err := a.AppendDiarized(1, utterances); err != nil {
		t.Fatalf("AppendDiarized() error: %v", err)
	}

	content := readMaster(t, a)
	if !strings.Contains(content, "SEGMENT 1") {
		t.Error("missing segment heading")
	}
	if !strings.Contains(content, "[00:00:00] SPEAKER_00:") {
		t.Errorf("missing first speaker heading:\n%s", content)
	}
	if !strings.Contains(content, "[00:01:05] SPEAKER_01:") {
		t.Errorf("missing second speaker heading:\n%s", content)
	}
	// consecutive same-speaker utterances share one heading
	if strings.Count(content, "SPEAKER_00:") != 1 {
		t.Errorf("SPEAKER_00 heading repeated:\n%s", content)
	}

	// structured JSON artifact
	data, err := os.ReadFile(filepath.Join(dir, "segment_001.json"))
	if err != nil {
		t.Fatalf("read segment json: %v", err)
	}
	var decoded []transcriber.Utterance
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode segment json: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("json has %d utterances, want 3", len(decoded))
	}
	if decoded[2].Speaker != "SPEAKER_01" || decoded[2].Start != 65 {
		t.Errorf("json utterance 2 = %+v", decoded[2])
	}
}

func TestAggregator_AppendDetails(t *testing.T) {
	a := NewAggregator(t.TempDir(), false)
	if err := a.Init("base", time.Now()); err != nil {
		t.Fatal(err)
	}

	utterances := []transcriber.Utterance{
		{Start: 0, End: 2.5, Text: "un"},
		{Start: 2.5, End: 4, Text: "deux"},
	}
	if err := a.AppendDetails(utterances); err != nil {
		t.Fatalf("AppendDetails() error: %v", err)
	}

	content := readMaster(t, a)
	if !strings.Contains(content, "DETAILS WITH TIMESTAMPS:") {
		t.Error("missing details heading")
	}
	if !strings.Contains(content, "[0.00s - 2.50s] un") {
		t.Errorf("missing detail line:\n%s", content)
	}
	if !strings.Contains(content, "[2.50s - 4.00s] deux") {
		t.Errorf("missing detail line:\n%s", content)
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{59.9, "00:00:59"},
		{61, "00:01:01"},
		{3661, "01:01:01"},
	}
	for _, tt := range tests {
		if got := formatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("formatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

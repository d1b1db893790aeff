package transcriber

import (
	"testing"
)

func TestParseWhisperCliJSON(t *testing.T) {
	data := []byte(`{
		"transcription": [
			{"timestamps": {"from": "00:00:00,000", "to": "00:00:04,500"},
			 "offsets": {"from": 0, "to": 4500},
			 "text": " Bonjour tout le monde."},
			{"timestamps": {"from": "00:00:04,500", "to": "00:00:07,000"},
			 "offsets": {"from": 4500, "to": 7000},
			 "text": " Comment allez-vous ?"}
		]
	}`)

	result, err := parseWhisperCliJSON(data)
	if err != nil {
		t.Fatalf("parseWhisperCliJSON() error: %v", err)
	}

	if result.Text != "Bonjour tout le monde. Comment allez-vous ?" {
		t.Errorf("Text = %q", result.Text)
	}
	if len(result.Utterances) != 2 {
		t.Fatalf("got %d utterances, want 2", len(result.Utterances))
	}
	if result.Utterances[0].Start != 0 || result.Utterances[0].End != 4.5 {
		t.Errorf("utterance 0 span = [%v, %v], want [0, 4.5]",
			result.Utterances[0].Start, result.Utterances[0].End)
	}
	if result.Utterances[1].Start != 4.5 || result.Utterances[1].End != 7.0 {
		t.Errorf("utterance 1 span = [%v, %v], want [4.5, 7]",
			result.Utterances[1].Start, result.Utterances[1].End)
	}
}

func TestParseWhisperCliJSON_SkipsEmptySegments(t *testing.T) {
	data := []byte(`{
		"transcription": [
			{"offsets": {"from": 0, "to": 1000}, "text": "  "},
			{"offsets": {"from": 1000, "to": 2000}, "text": " ok"}
		]
	}`)

	result, err := parseWhisperCliJSON(data)
	if err != nil {
		t.Fatalf("parseWhisperCliJSON() error: %v", err)
	}
	if len(result.Utterances) != 1 {
		t.Fatalf("got %d utterances, want 1", len(result.Utterances))
	}
	if result.Text != "ok" {
		t.Errorf("Text = %q, want %q", result.Text, "ok")
	}
}

func TestParseWhisperCliJSON_Invalid(t *testing.T) {
	if _, err := parseWhisperCliJSON([]byte("not json")); err == nil {
		t.Error("parseWhisperCliJSON() accepted invalid JSON")
	}
}

func TestBuildArgs(t *testing.T) {
	a := &WhisperCliAdapter{
		config:    Config{Model: "base", Language: "fr", Threads: 4},
		modelPath: "/models/ggml-base.bin",
	}

	args := a.buildArgs("/tmp/seg.wav", "/tmp/out")

	assertPair := func(flag, want string) {
		t.Helper()
		for i, arg := range args {
			if arg == flag {
				if i+1 >= len(args) || args[i+1] != want {
					t.Errorf("%s = %q, want %q", flag, args[i+1], want)
				}
				return
			}
		}
		t.Errorf("missing flag %s in %v", flag, args)
	}

	assertPair("-m", "/models/ggml-base.bin")
	assertPair("-f", "/tmp/seg.wav")
	assertPair("-t", "4")
	assertPair("-of", "/tmp/out")
	assertPair("-l", "fr")
}

func TestBuildArgs_AutoLanguage(t *testing.T) {
	a := &WhisperCliAdapter{
		config:    Config{Model: "base", Threads: 2},
		modelPath: "/models/ggml-base.bin",
	}

	for _, arg := range a.buildArgs("in.wav", "out") {
		if arg == "-l" {
			t.Error("buildArgs() emitted -l with empty language")
		}
	}
}

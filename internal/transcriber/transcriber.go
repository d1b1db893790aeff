package transcriber

import (
	"context"
	"fmt"
)

// Utterance is one recognized span of speech with its time range.
// Speaker is empty until diarization fills it in.
type Utterance struct {
	Speaker string  `json:"speaker,omitempty"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// Result is the output of transcribing one audio file.
type Result struct {
	Text       string
	Utterances []Utterance
}

// Adapter is a transcription backend. Implementations are synchronous,
// potentially slow, and potentially failing; callers own retry policy.
type Adapter interface {
	TranscribeFile(ctx context.Context, path string) (Result, error)
}

// Configuration for the transcriber
type Config struct {
	Backend  string
	APIKey   string
	Language string
	Model    string
	Threads  int
}

// NewAdapter creates the transcription adapter for the configured backend.
func NewAdapter(config Config) (Adapter, error) {
	switch config.Backend {
	case "openai":
		if config.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewOpenAIAdapter(config), nil

	case "whisper-cli":
		return NewWhisperCliAdapter(config)

	default:
		return nil, fmt.Errorf("unsupported backend: %s", config.Backend)
	}
}

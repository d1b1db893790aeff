package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Recording     RecordingConfig     `toml:"recording"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Diarization   DiarizationConfig   `toml:"diarization"`
	Output        OutputConfig        `toml:"output"`
	Notifications NotificationsConfig `toml:"notifications"`
}

type RecordingConfig struct {
	SampleRate int    `toml:"sample_rate"`
	Channels   int    `toml:"channels"`
	Format     string `toml:"format"`
	BufferSize int    `toml:"buffer_size"`
	Device     string `toml:"device"`
}

type TranscriptionConfig struct {
	Backend  string `toml:"backend"`
	Model    string `toml:"model"`
	Language string `toml:"language"`
	APIKey   string `toml:"api_key"`
	Threads  int    `toml:"threads"`
}

type DiarizationConfig struct {
	Enabled bool   `toml:"enabled"`
	Backend string `toml:"backend"`
	HFToken string `toml:"hf_token"`
}

type OutputConfig struct {
	BaseDir        string `toml:"base_dir"`
	SegmentMinutes int    `toml:"segment_minutes"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

// SegmentDuration returns the configured segment length.
// Zero means continuous recording (no automatic flush).
func (c *Config) SegmentDuration() time.Duration {
	return time.Duration(c.Output.SegmentMinutes) * time.Minute
}

// ResolveAPIKey returns the transcription API key, falling back to
// the OPENAI_API_KEY environment variable.
func (c *Config) ResolveAPIKey() string {
	if c.Transcription.APIKey != "" {
		return c.Transcription.APIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}

// ResolveHFToken returns the HuggingFace token for diarization, falling
// back to the HF_TOKEN environment variable.
func (c *Config) ResolveHFToken() string {
	if c.Diarization.HFToken != "" {
		return c.Diarization.HFToken
	}
	return os.Getenv("HF_TOKEN")
}

func (c *Config) Validate() error {
	// Recording
	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels != 1 && c.Recording.Channels != 2 {
		return fmt.Errorf("invalid recording.channels: %d (must be 1 or 2)", c.Recording.Channels)
	}
	if c.Recording.Format != "s16" {
		return fmt.Errorf("invalid recording.format: %q (only s16 supported)", c.Recording.Format)
	}
	if c.Recording.BufferSize <= 0 {
		return fmt.Errorf("invalid recording.buffer_size: %d", c.Recording.BufferSize)
	}
	frameBytes := 2 * c.Recording.Channels
	if c.Recording.BufferSize%frameBytes != 0 {
		return fmt.Errorf("invalid recording.buffer_size: %d (not aligned to %d-byte frames)",
			c.Recording.BufferSize, frameBytes)
	}

	// Transcription
	switch c.Transcription.Backend {
	case "openai":
		if c.ResolveAPIKey() == "" {
			return fmt.Errorf("OpenAI API key required: not found in config (transcription.api_key) or environment variable (OPENAI_API_KEY)")
		}
	case "whisper-cli":
		// no credentials needed
	default:
		return fmt.Errorf("invalid transcription.backend: %q (must be openai or whisper-cli)", c.Transcription.Backend)
	}
	if c.Transcription.Model == "" {
		return fmt.Errorf("invalid transcription.model: empty")
	}
	if c.Transcription.Language != "" && !isValidLanguageCode(c.Transcription.Language) {
		return fmt.Errorf("invalid transcription.language: %s (use empty string for auto-detect or ISO-639-1 codes like 'en', 'fr')", c.Transcription.Language)
	}

	// Diarization
	if c.Diarization.Enabled {
		switch c.Diarization.Backend {
		case "pyannote":
			if c.ResolveHFToken() == "" {
				return fmt.Errorf("HuggingFace token required for pyannote diarization: not found in config (diarization.hf_token) or environment variable (HF_TOKEN)")
			}
		case "silence-gap":
			// offline heuristic, no credentials
		default:
			return fmt.Errorf("invalid diarization.backend: %q (must be pyannote or silence-gap)", c.Diarization.Backend)
		}
	}

	// Output
	if c.Output.BaseDir == "" {
		return fmt.Errorf("invalid output.base_dir: empty")
	}
	if c.Output.SegmentMinutes < 0 {
		return fmt.Errorf("invalid output.segment_minutes: %d", c.Output.SegmentMinutes)
	}

	// Notifications
	validTypes := map[string]bool{"desktop": true, "log": true, "none": true, "": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}

func isValidLanguageCode(code string) bool {
	validCodes := map[string]bool{
		"en": true, "es": true, "fr": true, "de": true, "it": true, "pt": true,
		"ru": true, "ja": true, "ko": true, "zh": true, "ar": true, "hi": true,
		"nl": true, "sv": true, "da": true, "no": true, "fi": true, "pl": true,
		"tr": true, "he": true, "th": true, "vi": true, "id": true, "ms": true,
		"uk": true, "cs": true, "hu": true, "ro": true, "bg": true, "hr": true,
		"sk": true, "sl": true, "et": true, "lv": true, "lt": true, "ca": true,
		"gl": true, "is": true, "mk": true, "sq": true, "az": true, "be": true,
		"ka": true, "hy": true, "kk": true, "ne": true, "si": true, "km": true,
		"lo": true, "my": true, "fa": true, "ur": true, "bn": true, "ta": true,
		"te": true, "ml": true, "kn": true, "gu": true, "pa": true, "mr": true,
		"sw": true, "yo": true, "af": true, "am": true, "so": true,
	}
	return validCodes[code]
}

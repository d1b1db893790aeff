package transcriber

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIAdapter implements Adapter for the OpenAI Whisper API.
type OpenAIAdapter struct {
	client *openai.Client
	config Config
}

func NewOpenAIAdapter(config Config) *OpenAIAdapter {
	client := openai.NewClient(config.APIKey)
	return &OpenAIAdapter{
		client: client,
		config: config,
	}
}

// NewOpenAIAdapterWithBaseURL targets a non-default API endpoint. Used by
// tests and OpenAI-compatible servers.
func NewOpenAIAdapterWithBaseURL(config Config, baseURL string) *OpenAIAdapter {
	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = baseURL
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

func (a *OpenAIAdapter) TranscribeFile(ctx context.Context, path string) (Result, error) {
	// verbose_json carries per-utterance timestamps, needed to line the
	// transcript up with speaker turns.
	req := openai.AudioRequest{
		Model:    a.config.Model,
		FilePath: path,
		Language: a.config.Language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("openai-adapter: API call failed after %v: %v", duration, err)
		return Result{}, fmt.Errorf("openai transcription: %w", err)
	}

	result := Result{Text: resp.Text}
	for _, seg := range resp.Segments {
		result.Utterances = append(result.Utterances, Utterance{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}

	log.Printf("openai-adapter: transcribed %s in %v (%d utterances)", path, duration, len(result.Utterances))
	return result, nil
}

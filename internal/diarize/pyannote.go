package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/lfauchon/murmure/internal/transcriber"
)

const defaultPyannoteBaseURL = "https://api-inference.huggingface.co/models"

// DiarizationModel is the gated pyannote pipeline the HuggingFace token
// must have accepted access to.
const DiarizationModel = "pyannote/speaker-diarization-3.0"

// GatedModels are all repos the token needs access to for diarization.
var GatedModels = []string{
	DiarizationModel,
	"pyannote/segmentation-3.0",
	"pyannote/embedding",
}

// Pyannote runs speaker diarization through the HuggingFace inference API.
type Pyannote struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewPyannote(token string) *Pyannote {
	return &Pyannote{
		token:   token,
		baseURL: defaultPyannoteBaseURL,
		// diarization of a multi-minute segment is slow
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

// NewPyannoteWithBaseURL targets a non-default API endpoint. Used by tests.
func NewPyannoteWithBaseURL(token, baseURL string) *Pyannote {
	p := NewPyannote(token)
	p.baseURL = baseURL
	return p
}

// pyannoteTurn is one entry of the inference API response.
type pyannoteTurn struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

func (p *Pyannote) Diarize(ctx context.Context, wavPath string, _ []transcriber.Utterance) ([]Turn, error) {
	audio, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	url := p.baseURL + "/" + DiarizationModel
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(audio))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "audio/wav")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pyannote api error (status %d): %s", resp.StatusCode, string(body))
	}

	turns, err := parsePyannoteResponse(body)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	log.Printf("pyannote: diarized %s in %v (%d turns)", wavPath, time.Since(start), len(turns))
	return turns, nil
}

func parsePyannoteResponse(body []byte) ([]Turn, error) {
	var raw []pyannoteTurn
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	turns := make([]Turn, 0, len(raw))
	for _, t := range raw {
		if t.End <= t.Start {
			continue
		}
		turns = append(turns, Turn{Speaker: t.Speaker, Start: t.Start, End: t.End})
	}
	return turns, nil
}

// CheckAccess verifies the token can reach every gated pyannote repo.
// Returns one error per inaccessible model, keyed by model name.
func CheckAccess(ctx context.Context, token string) map[string]error {
	results := make(map[string]error, len(GatedModels))
	client := &http.Client{Timeout: 15 * time.Second}

	for _, model := range GatedModels {
		url := "https://huggingface.co/api/models/" + model
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			results[model] = err
			continue
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := client.Do(req)
		if err != nil {
			results[model] = err
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			results[model] = fmt.Errorf("access denied or conditions not accepted (status %d)", resp.StatusCode)
		} else {
			results[model] = nil
		}
	}
	return results
}

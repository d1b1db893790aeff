package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lfauchon/murmure/internal/models/whisper"
)

// WhisperCliAdapter implements Adapter for local whisper.cpp transcription
// through the whisper-cli binary and a downloaded ggml model.
type WhisperCliAdapter struct {
	config    Config
	modelPath string
}

func NewWhisperCliAdapter(config Config) (*WhisperCliAdapter, error) {
	modelPath, err := whisper.GetInstalledPath(config.Model)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("model %q not installed: run murmure models download %s", config.Model, config.Model))
	}
	if _, err := exec.LookPath("whisper-cli"); err != nil {
		return nil, NewFatalError(fmt.Errorf("whisper-cli not found: %w (install whisper.cpp)", err))
	}
	return &WhisperCliAdapter{
		config:    config,
		modelPath: modelPath,
	}, nil
}

func (a *WhisperCliAdapter) TranscribeFile(ctx context.Context, path string) (Result, error) {
	outDir, err := os.MkdirTemp("", "murmure-whisper-")
	if err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	outBase := filepath.Join(outDir, "out")
	args := a.buildArgs(path, outBase)

	start := time.Now()
	cmd := exec.CommandContext(ctx, "whisper-cli", args...)
	output, err := cmd.CombinedOutput()
	duration := time.Since(start)

	if err != nil {
		log.Printf("whisper-cli-adapter: failed after %v: %v", duration, err)
		return Result{}, fmt.Errorf("whisper-cli: %w: %s", err, truncate(string(output), 300))
	}

	data, err := os.ReadFile(outBase + ".json")
	if err != nil {
		return Result{}, fmt.Errorf("read whisper-cli output: %w", err)
	}

	result, err := parseWhisperCliJSON(data)
	if err != nil {
		return Result{}, fmt.Errorf("parse whisper-cli output: %w", err)
	}

	log.Printf("whisper-cli-adapter: transcribed %s in %v (%d utterances)", path, duration, len(result.Utterances))
	return result, nil
}

func (a *WhisperCliAdapter) buildArgs(audioPath, outBase string) []string {
	args := []string{
		"-m", a.modelPath,
		"-f", audioPath,
		"-t", strconv.Itoa(a.config.Threads),
		"-oj",
		"-of", outBase,
		"-np", // no progress prints on stderr
	}
	if a.config.Language != "" {
		args = append(args, "-l", a.config.Language)
	}
	return args
}

// whisperCliOutput mirrors the -oj JSON file layout.
type whisperCliOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"` // milliseconds
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseWhisperCliJSON(data []byte) (Result, error) {
	var out whisperCliOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Result{}, err
	}

	var result Result
	var parts []string
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Utterances = append(result.Utterances, Utterance{
			Start: float64(seg.Offsets.From) / 1000.0,
			End:   float64(seg.Offsets.To) / 1000.0,
			Text:  text,
		})
		parts = append(parts, text)
	}
	result.Text = strings.Join(parts, " ")
	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

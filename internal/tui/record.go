package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/lfauchon/murmure/internal/config"
	"github.com/lfauchon/murmure/internal/models/whisper"
)

// RecordOptions holds the per-session choices collected before recording.
type RecordOptions struct {
	Model          string
	SegmentMinutes int
	Diarize        bool
	Cancelled      bool
}

// PromptRecordOptions asks for the session settings interactively, seeded
// from the saved configuration.
func PromptRecordOptions(cfg *config.Config) (*RecordOptions, error) {
	clearScreen()
	fmt.Println(Logo())
	fmt.Println()

	modelOptions := transcriptionModelOptions(cfg.Transcription.Backend)
	if len(modelOptions) == 0 {
		return nil, fmt.Errorf("no models available for backend %q", cfg.Transcription.Backend)
	}

	selectedModel := cfg.Transcription.Model
	if !hasOption(modelOptions, selectedModel) {
		selectedModel = modelOptions[0].Value
	}

	minutes := strconv.Itoa(cfg.Output.SegmentMinutes)
	diarize := cfg.Diarization.Enabled

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription Model").
				Description(fmt.Sprintf("Backend: %s", cfg.Transcription.Backend)).
				Options(modelOptions...).
				Value(&selectedModel),
			huh.NewInput().
				Title("Segment Duration (minutes)").
				Description("Audio is cut and transcribed every N minutes").
				Placeholder("5").
				Validate(validateSegmentMinutes).
				Value(&minutes),
			huh.NewConfirm().
				Title("Speaker Diarization").
				Description("Label who is speaking (requires a Hugging Face token)").
				Affirmative("Enabled").
				Negative("Disabled").
				Value(&diarize),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return &RecordOptions{Cancelled: true}, nil
		}
		return nil, err
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(minutes))
	if err != nil {
		return nil, fmt.Errorf("invalid segment duration: %w", err)
	}

	return &RecordOptions{
		Model:          selectedModel,
		SegmentMinutes: parsed,
		Diarize:        diarize,
	}, nil
}

func validateSegmentMinutes(value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("enter a whole number of minutes")
	}
	if n < 1 {
		return fmt.Errorf("segment duration must be at least 1 minute")
	}
	if n > 60 {
		return fmt.Errorf("segment duration must be at most 60 minutes")
	}
	return nil
}

// transcriptionModelOptions lists the models a backend can run. Local models
// are annotated with their install state so a missing download is visible
// before the session starts.
func transcriptionModelOptions(backend string) []huh.Option[string] {
	switch backend {
	case "openai":
		return []huh.Option[string]{
			huh.NewOption("whisper-1", "whisper-1"),
		}
	case "whisper-cli":
		models := whisper.ListModels()
		options := make([]huh.Option[string], 0, len(models))
		for _, m := range models {
			label := fmt.Sprintf("%s (%s)", m.ID, m.Size)
			if whisper.IsInstalled(m.ID) {
				label += " - installed"
			} else {
				label += " - not installed"
			}
			options = append(options, huh.NewOption(label, m.ID))
		}
		return options
	default:
		return nil
	}
}

func hasOption(options []huh.Option[string], value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}

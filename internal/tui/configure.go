package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/lfauchon/murmure/internal/config"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// ConfigSection represents a configuration section
type ConfigSection string

const (
	SectionTranscription ConfigSection = "transcription"
	SectionDiarization   ConfigSection = "diarization"
	SectionRecording     ConfigSection = "recording"
	SectionOutput        ConfigSection = "output"
	SectionNotifications ConfigSection = "notifications"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Run starts the TUI configuration editor
func Run(cfg *config.Config) (*ConfigureResult, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection(cfg)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		switch section {
		case SectionSaveExit:
			confirmed, err := showSummary(cfg)
			if err != nil {
				return &ConfigureResult{Cancelled: true}, nil
			}
			if confirmed {
				return &ConfigureResult{Config: cfg, Cancelled: false}, nil
			}

		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil

		case SectionTranscription:
			if err := editTranscription(cfg); err != nil {
				continue
			}

		case SectionDiarization:
			if err := editDiarization(cfg); err != nil {
				continue
			}

		case SectionRecording:
			if err := editRecording(cfg); err != nil {
				continue
			}

		case SectionOutput:
			if err := editOutput(cfg); err != nil {
				continue
			}

		case SectionNotifications:
			if err := editNotifications(cfg); err != nil {
				continue
			}
		}
	}
}

func selectSection(cfg *config.Config) (ConfigSection, error) {
	options := []huh.Option[ConfigSection]{
		huh.NewOption(fmt.Sprintf("Transcription (%s/%s)", cfg.Transcription.Backend, cfg.Transcription.Model), SectionTranscription),
		huh.NewOption(formatDiarizationLabel(cfg), SectionDiarization),
		huh.NewOption(fmt.Sprintf("Recording (%d Hz, %d ch)", cfg.Recording.SampleRate, cfg.Recording.Channels), SectionRecording),
		huh.NewOption(fmt.Sprintf("Output (%s, %d min segments)", cfg.Output.BaseDir, cfg.Output.SegmentMinutes), SectionOutput),
		huh.NewOption(formatNotificationsLabel(cfg), SectionNotifications),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}

	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}

	return selected, nil
}

func formatDiarizationLabel(cfg *config.Config) string {
	if cfg.Diarization.Enabled {
		return fmt.Sprintf("Diarization (%s)", cfg.Diarization.Backend)
	}
	return "Diarization (disabled)"
}

func formatNotificationsLabel(cfg *config.Config) string {
	if cfg.Notifications.Enabled {
		return fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type)
	}
	return "Notifications (disabled)"
}

func editTranscription(cfg *config.Config) error {
	backend := cfg.Transcription.Backend
	backendForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription Backend").
				Description("Where audio segments are sent for speech-to-text").
				Options(
					huh.NewOption("OpenAI Whisper API", "openai"),
					huh.NewOption("whisper-cli (local)", "whisper-cli"),
				).
				Value(&backend),
		),
	).WithTheme(getTheme())

	if err := backendForm.Run(); err != nil {
		return err
	}
	cfg.Transcription.Backend = backend

	modelOptions := transcriptionModelOptions(backend)
	model := cfg.Transcription.Model
	if !hasOption(modelOptions, model) && len(modelOptions) > 0 {
		model = modelOptions[0].Value
	}

	language := cfg.Transcription.Language
	langDesc := "ISO-639-1 code (e.g., 'en', 'es', 'fr') or empty for auto-detect"
	if language != "" {
		langDesc = fmt.Sprintf("Currently: %s. %s", language, langDesc)
	}

	group := []huh.Field{
		huh.NewSelect[string]().
			Title("Model").
			Options(modelOptions...).
			Value(&model),
		huh.NewInput().
			Title("Language").
			Description(langDesc).
			Placeholder("auto-detect").
			Value(&language),
	}

	apiKey := cfg.Transcription.APIKey
	if backend == "openai" {
		keyDesc := "Leave empty to use the OPENAI_API_KEY environment variable"
		if apiKey != "" {
			keyDesc = fmt.Sprintf("Currently: %s", maskAPIKey(apiKey))
		}
		group = append(group, huh.NewInput().
			Title("API Key").
			Description(keyDesc).
			EchoMode(huh.EchoModePassword).
			Value(&apiKey))
	}

	form := huh.NewForm(huh.NewGroup(group...)).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transcription.Model = model
	cfg.Transcription.Language = language
	if backend == "openai" {
		cfg.Transcription.APIKey = apiKey
	}
	return nil
}

func editDiarization(cfg *config.Config) error {
	enabled := cfg.Diarization.Enabled
	backend := cfg.Diarization.Backend
	token := cfg.Diarization.HFToken

	tokenDesc := "Leave empty to use the HF_TOKEN environment variable"
	if token != "" {
		tokenDesc = fmt.Sprintf("Currently: %s", maskAPIKey(token))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Speaker Diarization").
				Description("Label who is speaking in each segment").
				Affirmative("Enabled").
				Negative("Disabled").
				Value(&enabled),
			huh.NewSelect[string]().
				Title("Backend").
				Options(
					huh.NewOption("pyannote (Hugging Face API)", "pyannote"),
					huh.NewOption("silence-gap (offline heuristic)", "silence-gap"),
				).
				Value(&backend),
			huh.NewInput().
				Title("Hugging Face Token").
				Description(tokenDesc).
				EchoMode(huh.EchoModePassword).
				Value(&token),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Diarization.Enabled = enabled
	cfg.Diarization.Backend = backend
	cfg.Diarization.HFToken = token
	return nil
}

func editRecording(cfg *config.Config) error {
	device := cfg.Recording.Device
	sampleRate := strconv.Itoa(cfg.Recording.SampleRate)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sample Rate").
				Description("16 kHz is what Whisper models expect").
				Options(
					huh.NewOption("16000 Hz", "16000"),
					huh.NewOption("44100 Hz", "44100"),
					huh.NewOption("48000 Hz", "48000"),
				).
				Value(&sampleRate),
			huh.NewInput().
				Title("Capture Device").
				Description("PipeWire target node, empty for the default microphone").
				Placeholder("default").
				Value(&device),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	rate, err := strconv.Atoi(sampleRate)
	if err != nil {
		return err
	}
	cfg.Recording.SampleRate = rate
	cfg.Recording.Device = device
	return nil
}

func editOutput(cfg *config.Config) error {
	baseDir := cfg.Output.BaseDir
	minutes := strconv.Itoa(cfg.Output.SegmentMinutes)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output Directory").
				Description("Session directories are created under this path").
				Placeholder("transcriptions").
				Value(&baseDir),
			huh.NewInput().
				Title("Segment Duration (minutes)").
				Validate(validateSegmentMinutes).
				Value(&minutes),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(minutes))
	if err != nil {
		return err
	}
	if baseDir != "" {
		cfg.Output.BaseDir = baseDir
	}
	cfg.Output.SegmentMinutes = parsed
	return nil
}

func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	typ := cfg.Notifications.Type

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Notifications").
				Affirmative("Enabled").
				Negative("Disabled").
				Value(&enabled),
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Desktop (notify-send)", "desktop"),
					huh.NewOption("Log only", "log"),
				).
				Value(&typ),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = enabled
	cfg.Notifications.Type = typ
	return nil
}

func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))
	fmt.Println()

	fmt.Printf("  %s %s (%s)\n", StyleLabel.Render("Transcription:"), cfg.Transcription.Backend, cfg.Transcription.Model)
	if cfg.Transcription.Language != "" {
		fmt.Printf("  %s %s\n", StyleLabel.Render("Language:"), cfg.Transcription.Language)
	}

	if cfg.Diarization.Enabled {
		fmt.Printf("  %s %s\n", StyleLabel.Render("Diarization:"), cfg.Diarization.Backend)
	} else {
		fmt.Printf("  %s disabled\n", StyleLabel.Render("Diarization:"))
	}

	fmt.Printf("  %s %d Hz, %d channel(s)\n", StyleLabel.Render("Recording:"), cfg.Recording.SampleRate, cfg.Recording.Channels)
	fmt.Printf("  %s %s, %d minute segments\n", StyleLabel.Render("Output:"), cfg.Output.BaseDir, cfg.Output.SegmentMinutes)

	if cfg.Notifications.Enabled {
		fmt.Printf("  %s %s\n", StyleLabel.Render("Notifications:"), cfg.Notifications.Type)
	} else {
		fmt.Printf("  %s disabled\n", StyleLabel.Render("Notifications:"))
	}

	fmt.Println()

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lfauchon/murmure/internal/audio"
	"github.com/lfauchon/murmure/internal/config"
	"github.com/lfauchon/murmure/internal/deps"
	"github.com/lfauchon/murmure/internal/diarize"
	"github.com/lfauchon/murmure/internal/models/whisper"
	"github.com/lfauchon/murmure/internal/notify"
	"github.com/lfauchon/murmure/internal/recording"
	"github.com/lfauchon/murmure/internal/session"
	"github.com/lfauchon/murmure/internal/transcriber"
	"github.com/lfauchon/murmure/internal/tui"
)

// set via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "murmure",
	Short: "Record your microphone and transcribe it segment by segment",
}

func init() {
	rootCmd.AddCommand(
		recordCmd(),
		transcribeCmd(),
		modelsCmd(),
		doctorCmd(),
		configureCmd(),
		versionCmd(),
	)
}

func recordCmd() *cobra.Command {
	var (
		model          string
		segmentMinutes int
		language       string
		diarizeFlag    bool
		continuous     bool
		noPrompt       bool
		device         string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Start a recording session",
		Long: `Record microphone audio in fixed-duration segments and transcribe
each segment as soon as it completes. Press Ctrl+C to stop; the partial
final segment is flushed and transcribed before exit.

Results are written to <output-dir>/session_<timestamp>/:
segment WAV files and a running transcription_complete.txt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if !noPrompt && !cmd.Flags().Changed("model") && !cmd.Flags().Changed("segment-minutes") && !continuous {
				opts, err := tui.PromptRecordOptions(cfg)
				if err != nil {
					return err
				}
				if opts.Cancelled {
					fmt.Println("Recording cancelled.")
					return nil
				}
				cfg.Transcription.Model = opts.Model
				cfg.Output.SegmentMinutes = opts.SegmentMinutes
				cfg.Diarization.Enabled = opts.Diarize
			}

			if cmd.Flags().Changed("model") {
				cfg.Transcription.Model = model
			}
			if cmd.Flags().Changed("segment-minutes") {
				cfg.Output.SegmentMinutes = segmentMinutes
			}
			if cmd.Flags().Changed("language") {
				cfg.Transcription.Language = language
			}
			if cmd.Flags().Changed("diarize") {
				cfg.Diarization.Enabled = diarizeFlag
			}
			if cmd.Flags().Changed("device") {
				cfg.Recording.Device = device
			}
			if continuous {
				cfg.Output.SegmentMinutes = 0
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			return runRecord(cmd.Context(), cfg, continuous)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "transcription model (e.g. whisper-1, base, large-v3)")
	cmd.Flags().IntVarP(&segmentMinutes, "segment-minutes", "s", 0, "segment duration in minutes")
	cmd.Flags().StringVarP(&language, "language", "l", "", "ISO-639-1 language code, empty for auto-detect")
	cmd.Flags().BoolVarP(&diarizeFlag, "diarize", "d", false, "label speakers in each segment")
	cmd.Flags().BoolVar(&continuous, "continuous", false, "record a single continuous take, transcribed at stop")
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "skip the interactive startup prompts")
	cmd.Flags().StringVar(&device, "device", "", "PipeWire capture device, empty for default")

	return cmd
}

func runRecord(parent context.Context, cfg *config.Config, continuous bool) error {
	adapter, err := transcriber.NewAdapter(transcriber.Config{
		Backend:  cfg.Transcription.Backend,
		APIKey:   cfg.ResolveAPIKey(),
		Language: cfg.Transcription.Language,
		Model:    cfg.Transcription.Model,
		Threads:  cfg.Transcription.Threads,
	})
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	var diarizer diarize.Diarizer
	if cfg.Diarization.Enabled {
		diarizer, err = diarize.NewDiarizer(diarize.Config{
			Backend: cfg.Diarization.Backend,
			HFToken: cfg.ResolveHFToken(),
		})
		if err != nil {
			return fmt.Errorf("failed to create diarizer: %w", err)
		}
	}

	recCfg := recording.Config{
		SampleRate: cfg.Recording.SampleRate,
		Channels:   cfg.Recording.Channels,
		Format:     cfg.Recording.Format,
		BufferSize: cfg.Recording.BufferSize,
		Device:     cfg.Recording.Device,
	}

	controller := session.New(session.Options{
		Recording:  recCfg,
		SegmentDur: cfg.SegmentDuration(),
		Continuous: continuous,
		Diarize:    cfg.Diarization.Enabled,
		BaseDir:    cfg.Output.BaseDir,
		Model:      cfg.Transcription.Model,
	},
		recording.NewRecorder(recCfg),
		adapter,
		diarizer,
		notify.New(cfg.Notifications.Enabled, cfg.Notifications.Type),
	)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Recording. Press Ctrl+C to stop.")
	return controller.Run(ctx)
}

func transcribeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an existing audio file",
		Long: `Transcribe a single audio file with the configured backend.
Non-WAV input (mp3, m4a, ogg, ...) is converted with ffmpeg first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runTranscribe(cmd.Context(), cfg, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file (default: input path with .txt extension)")

	return cmd
}

func runTranscribe(ctx context.Context, cfg *config.Config, path, output string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	adapter, err := transcriber.NewAdapter(transcriber.Config{
		Backend:  cfg.Transcription.Backend,
		APIKey:   cfg.ResolveAPIKey(),
		Language: cfg.Transcription.Language,
		Model:    cfg.Transcription.Model,
		Threads:  cfg.Transcription.Threads,
	})
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	wavPath := path
	if !audio.IsWav(path) && cfg.Transcription.Backend == "whisper-cli" {
		tmpDir, err := os.MkdirTemp("", "murmure-convert-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmpDir)

		fmt.Fprintf(os.Stderr, "Converting %s to 16 kHz WAV...\n", filepath.Base(path))
		wavPath, err = audio.ConvertToWav16k(ctx, path, tmpDir)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Transcribing %s with %s...\n", filepath.Base(path), cfg.Transcription.Model)
	result, err := adapter.TranscribeFile(ctx, wavPath)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	text := strings.TrimSpace(result.Text) + "\n"
	fmt.Print(text)

	if output == "" {
		ext := filepath.Ext(path)
		output = strings.TrimSuffix(path, ext) + ".txt"
	}
	if err := os.WriteFile(output, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Fprintf(os.Stderr, "Transcription saved to %s\n", output)
	return nil
}

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage local whisper models",
	}

	cmd.AddCommand(modelsListCmd())
	cmd.AddCommand(modelsDownloadCmd())
	cmd.AddCommand(modelsRemoveCmd())

	return cmd
}

func modelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available whisper models",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, m := range whisper.ListModels() {
				prefix := "  [ ]"
				if whisper.IsInstalled(m.ID) {
					prefix = "  [x]"
				}
				line := fmt.Sprintf("%s %s - %s [%s", prefix, m.ID, m.Name, m.Size)
				if m.Multilingual {
					line += ", multilingual]"
				} else {
					line += ", english-only]"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func modelsDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <model>",
		Short: "Download a whisper model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModelDownload(cmd.Context(), args[0])
		},
	}
}

func runModelDownload(ctx context.Context, modelID string) error {
	model := whisper.GetModel(modelID)
	if model == nil {
		return fmt.Errorf("unknown model: %s (see 'murmure models list')", modelID)
	}

	if whisper.IsInstalled(modelID) {
		fmt.Printf("model '%s' is already installed at %s\n", modelID, whisper.GetModelPath(modelID))
		return nil
	}

	fmt.Printf("downloading %s (%s)...\n", modelID, model.Size)

	var lastPercent int
	err := whisper.Download(ctx, modelID, func(downloaded, total int64) {
		if total > 0 {
			percent := int(downloaded * 100 / total)
			if percent >= lastPercent+10 {
				fmt.Printf("%d%% ", percent)
				lastPercent = percent
			}
		}
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Printf("\ndownload complete: %s\n", whisper.GetModelPath(modelID))
	return nil
}

func modelsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <model>",
		Short: "Remove a downloaded whisper model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modelID := args[0]
			if whisper.GetModel(modelID) == nil {
				return fmt.Errorf("unknown model: %s", modelID)
			}
			if !whisper.IsInstalled(modelID) {
				return fmt.Errorf("model '%s' is not installed", modelID)
			}
			if err := whisper.Remove(modelID); err != nil {
				return fmt.Errorf("failed to remove model: %w", err)
			}
			fmt.Printf("model '%s' removed\n", modelID)
			return nil
		},
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external dependencies and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			runDoctor(cmd.Context())
			return nil
		},
	}
}

func runDoctor(ctx context.Context) {
	printStatus := func(name string, st deps.Status, required string) {
		if st.Installed {
			detail := st.Path
			if st.Version != "" {
				detail += " (" + st.Version + ")"
			}
			fmt.Printf("  [x] %-12s %s\n", name, detail)
		} else {
			fmt.Printf("  [ ] %-12s not found - %s\n", name, required)
		}
	}

	fmt.Println("Binaries:")
	printStatus("pw-record", deps.CheckPwRecord(), "required for recording")
	printStatus("whisper-cli", deps.CheckWhisperCli(), "required for local transcription")
	printStatus("ffmpeg", deps.CheckFFmpeg(), "required to transcribe non-WAV files locally")

	fmt.Println("\nModels:")
	installed := whisper.ListInstalled()
	if len(installed) == 0 {
		fmt.Println("  no local models installed ('murmure models download base')")
	}
	for _, id := range installed {
		fmt.Printf("  [x] %s\n", id)
	}

	fmt.Println("\nCredentials:")
	if os.Getenv("OPENAI_API_KEY") != "" {
		fmt.Println("  [x] OPENAI_API_KEY set")
	} else {
		fmt.Println("  [ ] OPENAI_API_KEY not set (needed for the openai backend)")
	}

	token := os.Getenv("HF_TOKEN")
	if token == "" {
		fmt.Println("  [ ] HF_TOKEN not set (needed for pyannote diarization)")
		return
	}
	fmt.Println("  [x] HF_TOKEN set, checking gated model access...")
	for model, err := range diarize.CheckAccess(ctx, token) {
		if err != nil {
			fmt.Printf("  [ ] %s: %v\n", model, err)
		} else {
			fmt.Printf("  [x] %s\n", model)
		}
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			result, err := tui.Run(cfg)
			if err != nil {
				return fmt.Errorf("configuration editor error: %w", err)
			}

			if result.Cancelled {
				fmt.Println("Configuration cancelled.")
				return nil
			}

			if err := result.Config.Validate(); err != nil {
				fmt.Printf("Configuration validation failed: %v\n", err)
				return err
			}

			if err := config.Save(result.Config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			configPath, _ := config.GetConfigPath()
			fmt.Println()
			fmt.Println("Configuration saved.")
			fmt.Printf("Config file location: %s\n", configPath)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the murmure version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("murmure %s\n", version)
		},
	}
}

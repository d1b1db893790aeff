package config

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Recording: RecordingConfig{
			SampleRate: 16000,
			Channels:   1,
			Format:     "s16",
			BufferSize: 2048,
			Device:     "",
		},
		Transcription: TranscriptionConfig{
			Backend:  "openai",
			Model:    "whisper-1",
			Language: "fr",
			Threads:  0,
		},
		Diarization: DiarizationConfig{
			Enabled: false,
			Backend: "pyannote",
		},
		Output: OutputConfig{
			BaseDir:        "transcriptions",
			SegmentMinutes: 5,
		},
		Notifications: NotificationsConfig{
			Enabled: false,
			Type:    "log",
		},
	}
}

package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lfauchon/murmure/internal/config"
	"github.com/lfauchon/murmure/internal/diarize"
	"github.com/lfauchon/murmure/internal/recording"
	"github.com/lfauchon/murmure/internal/transcriber"
)

// TestConfig returns a valid configuration for testing
func TestConfig() *config.Config {
	return &config.Config{
		Recording: config.RecordingConfig{
			SampleRate: 16000,
			Channels:   1,
			Format:     "s16",
			BufferSize: 2048,
			Device:     "",
		},
		Transcription: config.TranscriptionConfig{
			Backend:  "openai",
			Model:    "whisper-1",
			Language: "fr",
			APIKey:   "test-api-key",
		},
		Diarization: config.DiarizationConfig{
			Enabled: false,
			Backend: "silence-gap",
		},
		Output: config.OutputConfig{
			BaseDir:        "transcriptions",
			SegmentMinutes: 5,
		},
		Notifications: config.NotificationsConfig{
			Enabled: true,
			Type:    "log",
		},
	}
}

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// PCMFrames splits deterministic synthetic s16le audio into frames of the
// given size. total need not be a multiple of frameSize; the last frame
// carries the remainder.
func PCMFrames(total, frameSize int) []recording.AudioFrame {
	data := make([]byte, total)
	for i := range data {
		data[i] = byte(i % 251)
	}

	var frames []recording.AudioFrame
	for off := 0; off < total; off += frameSize {
		end := off + frameSize
		if end > total {
			end = total
		}
		frames = append(frames, recording.AudioFrame{
			Data:      data[off:end],
			Timestamp: time.Now(),
		})
	}
	return frames
}

// MockRecorder delivers a scripted list of frames, then keeps the stream
// open until stopped or cancelled.
type MockRecorder struct {
	Frames     []recording.AudioFrame
	StartError error
	StreamErr  error // delivered on the error channel after the frames

	// CloseAfterFrames ends the stream once all frames are delivered
	// instead of waiting for Stop.
	CloseAfterFrames bool

	mu        sync.Mutex
	recording atomic.Bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

func NewMockRecorder(frames []recording.AudioFrame) *MockRecorder {
	return &MockRecorder{Frames: frames}
}

func (m *MockRecorder) Start(ctx context.Context) (<-chan recording.AudioFrame, <-chan error, error) {
	if m.StartError != nil {
		return nil, nil, m.StartError
	}

	m.mu.Lock()
	m.stopCh = make(chan struct{})
	m.mu.Unlock()

	m.recording.Store(true)

	frameCh := make(chan recording.AudioFrame, 16)
	errCh := make(chan error, 1)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(frameCh)
		defer close(errCh)

		for _, frame := range m.Frames {
			select {
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			case frameCh <- frame:
			}
		}

		if m.StreamErr != nil {
			errCh <- m.StreamErr
			return
		}
		if m.CloseAfterFrames {
			return
		}

		select {
		case <-ctx.Done():
		case <-m.stopCh:
		}
	}()

	return frameCh, errCh, nil
}

func (m *MockRecorder) Stop() error {
	if !m.recording.Load() {
		return nil
	}
	m.recording.Store(false)

	m.mu.Lock()
	if m.stopCh != nil {
		close(m.stopCh)
		m.stopCh = nil
	}
	m.mu.Unlock()
	return nil
}

func (m *MockRecorder) Wait() {
	m.wg.Wait()
}

func (m *MockRecorder) IsRecording() bool {
	return m.recording.Load()
}

// MockAdapter implements transcriber.Adapter, recording the paths it was
// asked to transcribe.
type MockAdapter struct {
	TranscribeFunc func(ctx context.Context, path string) (transcriber.Result, error)

	mu    sync.Mutex
	Paths []string
}

func (m *MockAdapter) TranscribeFile(ctx context.Context, path string) (transcriber.Result, error) {
	m.mu.Lock()
	m.Paths = append(m.Paths, path)
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, path)
	}
	return transcriber.Result{Text: "mock transcription"}, nil
}

func (m *MockAdapter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Paths)
}

// MockDiarizer implements diarize.Diarizer with scripted turns.
type MockDiarizer struct {
	Turns []diarize.Turn
	Err   error

	mu    sync.Mutex
	Calls int
}

func (m *MockDiarizer) Diarize(ctx context.Context, wavPath string, utterances []transcriber.Utterance) ([]diarize.Turn, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Turns, nil
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

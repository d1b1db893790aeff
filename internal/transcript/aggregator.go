package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lfauchon/murmure/internal/transcriber"
)

// MasterFileName is the running transcript inside a session directory.
const MasterFileName = "transcription_complete.txt"

// Aggregator appends transcription results to a session's master transcript,
// and per-segment JSON records for diarized sessions. Every append opens and
// closes the file so an interrupted process leaves all prior segments intact.
type Aggregator struct {
	dir        string
	masterPath string
	diarized   bool
}

func NewAggregator(sessionDir string, diarized bool) *Aggregator {
	return &Aggregator{
		dir:        sessionDir,
		masterPath: filepath.Join(sessionDir, MasterFileName),
		diarized:   diarized,
	}
}

// MasterPath returns the path of the running transcript file.
func (a *Aggregator) MasterPath() string {
	return a.masterPath
}

// Init writes the session banner at the top of the master file.
func (a *Aggregator) Init(model string, startedAt time.Time) error {
	var b strings.Builder
	if a.diarized {
		bar := strings.Repeat("=", 70)
		b.WriteString(bar + "\n")
		b.WriteString("TRANSCRIPTION SESSION WITH SPEAKER DIARIZATION\n")
		b.WriteString(startedAt.Format("2006-01-02 15:04:05") + "\n")
		b.WriteString(fmt.Sprintf("Model: %s\n", model))
		b.WriteString(bar + "\n\n")
	} else {
		bar := strings.Repeat("=", 50)
		b.WriteString(bar + "\n")
		b.WriteString(fmt.Sprintf("TRANSCRIPTION SESSION - %s\n", startedAt.Format("2006-01-02 15:04:05")))
		b.WriteString(fmt.Sprintf("Model: %s\n", model))
		b.WriteString(bar + "\n\n")
	}

	if err := os.WriteFile(a.masterPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("init transcript: %w", err)
	}
	return nil
}

// AppendSegment appends a segment's plain transcription.
func (a *Aggregator) AppendSegment(index int, text string) error {
	entry := fmt.Sprintf("\n--- SEGMENT %d ---\n%s\n", index, strings.TrimSpace(text))
	return a.append(entry)
}

// AppendFailure records a failed segment so its absence from the transcript
// is visible rather than a silent gap. The audio file still exists on disk.
func (a *Aggregator) AppendFailure(index int, cause error) error {
	entry := fmt.Sprintf("\n--- SEGMENT %d ---\n[transcription failed: %v]\n", index, cause)
	return a.append(entry)
}

// AppendDiarized appends a speaker-attributed segment block and writes the
// structured per-segment JSON artifact next to the audio file.
func (a *Aggregator) AppendDiarized(index int, utterances []transcriber.Utterance) error {
	if err := a.append(formatDiarized(index, utterances)); err != nil {
		return err
	}
	return a.writeSegmentJSON(index, utterances)
}

// AppendDetails appends the timestamped per-utterance detail section used by
// continuous (single-recording) sessions.
func (a *Aggregator) AppendDetails(utterances []transcriber.Utterance) error {
	var b strings.Builder
	bar := strings.Repeat("-", 50)
	b.WriteString("\n" + bar + "\n")
	b.WriteString("DETAILS WITH TIMESTAMPS:\n")
	b.WriteString(bar + "\n\n")
	for _, u := range utterances {
		b.WriteString(fmt.Sprintf("[%.2fs - %.2fs] %s\n", u.Start, u.End, strings.TrimSpace(u.Text)))
	}
	return a.append(b.String())
}

func (a *Aggregator) append(entry string) error {
	f, err := os.OpenFile(a.masterPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return fmt.Errorf("append transcript: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close transcript: %w", err)
	}
	return nil
}

func (a *Aggregator) writeSegmentJSON(index int, utterances []transcriber.Utterance) error {
	path := filepath.Join(a.dir, fmt.Sprintf("segment_%03d.json", index))
	data, err := json.MarshalIndent(utterances, "", "  ")
	if err != nil {
		return fmt.Errorf("encode segment %d json: %w", index, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write segment %d json: %w", index, err)
	}
	return nil
}

// formatDiarized renders a segment with speaker headings, starting a new
// block whenever the speaker changes.
func formatDiarized(index int, utterances []transcriber.Utterance) string {
	var b strings.Builder
	bar := strings.Repeat("=", 70)
	b.WriteString("\n" + bar + "\n")
	b.WriteString(fmt.Sprintf("SEGMENT %d\n", index))
	b.WriteString(bar + "\n\n")

	currentSpeaker := ""
	for _, u := range utterances {
		if u.Speaker != currentSpeaker {
			if currentSpeaker != "" {
				b.WriteString("\n")
			}
			b.WriteString(fmt.Sprintf("[%s] %s:\n", formatTimestamp(u.Start), u.Speaker))
			currentSpeaker = u.Speaker
		}
		b.WriteString(fmt.Sprintf("  %s\n", strings.TrimSpace(u.Text)))
	}

	b.WriteString("\n")
	return b.String()
}

// formatTimestamp renders seconds as HH:MM:SS.
func formatTimestamp(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

package diarize

import (
	"context"
	"fmt"

	"github.com/lfauchon/murmure/internal/transcriber"
)

// UnknownSpeaker labels utterances no speaker turn overlaps.
const UnknownSpeaker = "Unknown Speaker"

// Turn is one span of audio attributed to a single speaker.
type Turn struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Diarizer produces speaker turns for a segment. Implementations may inspect
// the audio file, the recognized utterances, or both.
type Diarizer interface {
	Diarize(ctx context.Context, wavPath string, utterances []transcriber.Utterance) ([]Turn, error)
}

// Config selects and parameterizes the diarization backend.
type Config struct {
	Backend string
	HFToken string
}

func NewDiarizer(cfg Config) (Diarizer, error) {
	switch cfg.Backend {
	case "pyannote":
		if cfg.HFToken == "" {
			return nil, fmt.Errorf("HuggingFace token required for pyannote")
		}
		return NewPyannote(cfg.HFToken), nil
	case "silence-gap":
		return SilenceGap{}, nil
	default:
		return nil, fmt.Errorf("unsupported diarization backend: %s", cfg.Backend)
	}
}

// Label assigns each utterance the speaker that covers most of its time
// range, leaving UnknownSpeaker where no turn overlaps.
func Label(utterances []transcriber.Utterance, turns []Turn) []transcriber.Utterance {
	labeled := make([]transcriber.Utterance, len(utterances))
	copy(labeled, utterances)
	for i := range labeled {
		labeled[i].Speaker = DominantSpeaker(turns, labeled[i].Start, labeled[i].End)
	}
	return labeled
}

// DominantSpeaker finds the speaker with the largest total overlap with the
// [start, end) interval.
func DominantSpeaker(turns []Turn, start, end float64) string {
	speakerTime := make(map[string]float64)

	for _, turn := range turns {
		overlapStart := max(turn.Start, start)
		overlapEnd := min(turn.End, end)
		if overlapStart < overlapEnd {
			speakerTime[turn.Speaker] += overlapEnd - overlapStart
		}
	}

	if len(speakerTime) == 0 {
		return UnknownSpeaker
	}

	var best string
	var bestTime float64
	for speaker, t := range speakerTime {
		if t > bestTime || (t == bestTime && (best == "" || speaker < best)) {
			best = speaker
			bestTime = t
		}
	}
	return best
}

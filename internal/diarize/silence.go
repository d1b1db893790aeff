package diarize

import (
	"context"
	"fmt"

	"github.com/lfauchon/murmure/internal/transcriber"
)

// gap between utterances that suggests a speaker change, in seconds
const speakerGapThreshold = 1.5

// SilenceGap is an offline heuristic diarizer: it alternates between two
// speakers whenever the pause between utterances exceeds a threshold. It is
// a fallback for sessions without a HuggingFace token and is wrong for real
// overlapping conversation; the pyannote backend is the accurate one.
type SilenceGap struct{}

func (SilenceGap) Diarize(_ context.Context, _ string, utterances []transcriber.Utterance) ([]Turn, error) {
	if len(utterances) == 0 {
		return nil, nil
	}

	turns := make([]Turn, 0, len(utterances))
	speaker := 1
	for i, u := range utterances {
		if i > 0 {
			gap := u.Start - utterances[i-1].End
			if gap > speakerGapThreshold {
				if speaker == 1 {
					speaker = 2
				} else {
					speaker = 1
				}
			}
		}
		turns = append(turns, Turn{
			Speaker: fmt.Sprintf("SPEAKER_%02d", speaker),
			Start:   u.Start,
			End:     u.End,
		})
	}
	return turns, nil
}

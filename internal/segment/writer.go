package segment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Writer serializes segments as PCM WAV files in a session directory.
// Files are named segment_NNN.wav by segment index.
type Writer struct {
	dir        string
	sampleRate int
	channels   int
}

func NewWriter(dir string, sampleRate, channels int) *Writer {
	return &Writer{
		dir:        dir,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// FileName returns the deterministic file name for a segment index.
func FileName(index int) string {
	return fmt.Sprintf("segment_%03d.wav", index)
}

// Write encodes the segment's raw s16le PCM to a WAV file and returns its path.
func (w *Writer) Write(seg *Segment) (string, error) {
	path := filepath.Join(w.dir, FileName(seg.Index))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create segment file: %w", err)
	}

	enc := wav.NewEncoder(f, w.sampleRate, 16, w.channels, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: w.channels,
			SampleRate:  w.sampleRate,
		},
		SourceBitDepth: 16,
		Data:           pcmToInts(seg.PCM),
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return "", fmt.Errorf("encode segment %d: %w", seg.Index, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return "", fmt.Errorf("finalize segment %d: %w", seg.Index, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close segment file: %w", err)
	}

	return path, nil
}

// pcmToInts converts little-endian 16-bit PCM bytes to samples.
// A trailing odd byte (torn sample) is ignored.
func pcmToInts(pcm []byte) []int {
	n := len(pcm) / 2
	samples := make([]int, n)
	for i := 0; i < n; i++ {
		samples[i] = int(int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8))
	}
	return samples
}

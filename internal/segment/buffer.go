package segment

import (
	"time"
)

// Segment is one fixed-duration unit of captured audio within a session.
// Indices are 1-based and contiguous.
type Segment struct {
	Index    int
	PCM      []byte
	Duration time.Duration
}

// Buffer accumulates raw PCM until a byte threshold is reached, then emits
// a complete segment. Bytes beyond the threshold are carried into the next
// segment, so segments are exact-length and no audio is duplicated or lost.
type Buffer struct {
	threshold     int // bytes per complete segment; 0 = never auto-emit
	bytesPerSec   int
	pending       []byte
	nextIndex     int
	emittedBytes  int64
	ingestedBytes int64
}

// NewBuffer creates a segment buffer. segmentDur of zero disables automatic
// emission (continuous recording); Flush still emits whatever accumulated.
func NewBuffer(segmentDur time.Duration, bytesPerSec int) *Buffer {
	threshold := 0
	if segmentDur > 0 {
		threshold = int(segmentDur.Seconds() * float64(bytesPerSec))
		// keep segment boundaries on sample frame boundaries
		if rem := threshold % 2; rem != 0 {
			threshold -= rem
		}
	}
	return &Buffer{
		threshold:   threshold,
		bytesPerSec: bytesPerSec,
		nextIndex:   1,
	}
}

// Add ingests one frame of raw PCM. When the accumulated bytes reach the
// threshold it returns a complete segment; otherwise it returns nil.
func (b *Buffer) Add(data []byte) *Segment {
	b.pending = append(b.pending, data...)
	b.ingestedBytes += int64(len(data))

	if b.threshold <= 0 || len(b.pending) < b.threshold {
		return nil
	}

	pcm := make([]byte, b.threshold)
	copy(pcm, b.pending[:b.threshold])

	carry := len(b.pending) - b.threshold
	copy(b.pending, b.pending[b.threshold:])
	b.pending = b.pending[:carry]

	return b.emit(pcm)
}

// Flush emits the final partial segment, if any audio is pending. Called at
// stream end so that interrupted recordings keep their trailing audio.
func (b *Buffer) Flush() *Segment {
	if len(b.pending) == 0 {
		return nil
	}
	pcm := make([]byte, len(b.pending))
	copy(pcm, b.pending)
	b.pending = b.pending[:0]
	return b.emit(pcm)
}

// Pending returns the number of buffered bytes not yet emitted.
func (b *Buffer) Pending() int {
	return len(b.pending)
}

func (b *Buffer) emit(pcm []byte) *Segment {
	seg := &Segment{
		Index: b.nextIndex,
		PCM:   pcm,
	}
	if b.bytesPerSec > 0 {
		seg.Duration = time.Duration(float64(len(pcm)) / float64(b.bytesPerSec) * float64(time.Second))
	}
	b.nextIndex++
	b.emittedBytes += int64(len(pcm))
	return seg
}

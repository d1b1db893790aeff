package segment

import (
	"bytes"
	"testing"
	"time"
)

const testByteRate = 32000 // 16kHz mono s16

func frames(t *testing.T, total, frameSize int) [][]byte {
	t.Helper()
	var out [][]byte
	val := byte(0)
	for total > 0 {
		n := frameSize
		if n > total {
			n = total
		}
		frame := make([]byte, n)
		for i := range frame {
			frame[i] = val
			val++
		}
		out = append(out, frame)
		total -= n
	}
	return out
}

func TestBuffer_EmitsAtThreshold(t *testing.T) {
	// 1 second segments at 32000 bytes/sec
	b := NewBuffer(time.Second, testByteRate)

	var segs []*Segment
	for _, f := range frames(t, 3*testByteRate, 2048) {
		if seg := b.Add(f); seg != nil {
			segs = append(segs, seg)
		}
	}

	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	for i, seg := range segs {
		if seg.Index != i+1 {
			t.Errorf("segment %d has index %d, want %d", i, seg.Index, i+1)
		}
		if len(seg.PCM) != testByteRate {
			t.Errorf("segment %d has %d bytes, want %d", i, len(seg.PCM), testByteRate)
		}
		if seg.Duration != time.Second {
			t.Errorf("segment %d duration = %v, want 1s", i, seg.Duration)
		}
	}
	if b.Pending() != 0 {
		t.Errorf("pending = %d after exact-multiple input, want 0", b.Pending())
	}
}

func TestBuffer_CarriesExcessIntoNextSegment(t *testing.T) {
	b := NewBuffer(time.Second, testByteRate)

	// One oversized frame: threshold + 100 bytes.
	frame := make([]byte, testByteRate+100)
	for i := range frame {
		frame[i] = byte(i)
	}

	seg := b.Add(frame)
	if seg == nil {
		t.Fatal("expected a segment at threshold")
	}
	if len(seg.PCM) != testByteRate {
		t.Fatalf("segment has %d bytes, want exactly %d", len(seg.PCM), testByteRate)
	}
	if b.Pending() != 100 {
		t.Fatalf("pending = %d, want 100 carried bytes", b.Pending())
	}

	// The carried bytes must be the input's tail, in order.
	final := b.Flush()
	if final == nil {
		t.Fatal("expected final partial segment from Flush")
	}
	if !bytes.Equal(final.PCM, frame[testByteRate:]) {
		t.Error("carried bytes do not match input tail")
	}
	if final.Index != 2 {
		t.Errorf("final segment index = %d, want 2", final.Index)
	}
}

func TestBuffer_NoEmitBeforeThreshold(t *testing.T) {
	b := NewBuffer(time.Second, testByteRate)

	if seg := b.Add(make([]byte, testByteRate-1)); seg != nil {
		t.Error("segment emitted before threshold")
	}
	if b.Pending() != testByteRate-1 {
		t.Errorf("pending = %d, want %d", b.Pending(), testByteRate-1)
	}
}

func TestBuffer_FlushEmitsPartialFinalSegment(t *testing.T) {
	b := NewBuffer(time.Second, testByteRate)

	b.Add(make([]byte, 12345))
	seg := b.Flush()
	if seg == nil {
		t.Fatal("Flush returned nil with pending audio")
	}
	if len(seg.PCM) != 12345 {
		t.Errorf("flushed %d bytes, want 12345", len(seg.PCM))
	}
	if seg.Index != 1 {
		t.Errorf("flushed segment index = %d, want 1", seg.Index)
	}

	// Nothing left after flush.
	if again := b.Flush(); again != nil {
		t.Error("second Flush emitted a segment from empty buffer")
	}
}

func TestBuffer_ContinuousModeNeverAutoEmits(t *testing.T) {
	b := NewBuffer(0, testByteRate)

	for _, f := range frames(t, 10*testByteRate, 4096) {
		if seg := b.Add(f); seg != nil {
			t.Fatal("continuous buffer emitted a segment on Add")
		}
	}

	seg := b.Flush()
	if seg == nil {
		t.Fatal("Flush returned nil")
	}
	if len(seg.PCM) != 10*testByteRate {
		t.Errorf("flushed %d bytes, want %d", len(seg.PCM), 10*testByteRate)
	}
}

func TestBuffer_Deterministic(t *testing.T) {
	run := func() []*Segment {
		b := NewBuffer(time.Second, testByteRate)
		var segs []*Segment
		for _, f := range frames(t, 5*testByteRate/2, 1000) {
			if seg := b.Add(f); seg != nil {
				segs = append(segs, seg)
			}
		}
		if seg := b.Flush(); seg != nil {
			segs = append(segs, seg)
		}
		return segs
	}

	a, c := run(), run()
	if len(a) != len(c) {
		t.Fatalf("run lengths differ: %d vs %d", len(a), len(c))
	}
	for i := range a {
		if !bytes.Equal(a[i].PCM, c[i].PCM) {
			t.Errorf("segment %d differs between identical runs", i+1)
		}
	}
}

func TestBuffer_SegmentBoundaryMath(t *testing.T) {
	// D seconds at rate R must give D*R sample frames per segment (±1 frame).
	tests := []struct {
		name       string
		dur        time.Duration
		byteRate   int
		wantFrames int
	}{
		{"5s mono 16k", 5 * time.Second, 32000, 5 * 16000},
		{"30s mono 16k", 30 * time.Second, 32000, 30 * 16000},
		{"1s stereo 16k", time.Second, 64000, 16000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(tt.dur, tt.byteRate)

			var seg *Segment
			for seg == nil {
				seg = b.Add(make([]byte, 4096))
			}
			gotFrames := len(seg.PCM) * 16000 / tt.byteRate
			diff := gotFrames - tt.wantFrames
			if diff < -1 || diff > 1 {
				t.Errorf("segment frames = %d, want %d (±1)", gotFrames, tt.wantFrames)
			}
		})
	}
}

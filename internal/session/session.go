package session

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lfauchon/murmure/internal/diarize"
	"github.com/lfauchon/murmure/internal/notify"
	"github.com/lfauchon/murmure/internal/recording"
	"github.com/lfauchon/murmure/internal/segment"
	"github.com/lfauchon/murmure/internal/transcriber"
	"github.com/lfauchon/murmure/internal/transcript"
)

type State string

const (
	Idle      State = "idle"
	Recording State = "recording"
	Flushing  State = "flushing"
	Stopping  State = "stopping"
	Finalized State = "finalized"
)

// Recorder is the audio source. *recording.Recorder satisfies it; tests
// substitute a synthetic frame generator.
type Recorder interface {
	Start(ctx context.Context) (<-chan recording.AudioFrame, <-chan error, error)
	Stop() error
	Wait()
}

type Options struct {
	Recording  recording.Config
	SegmentDur time.Duration // 0 = continuous (single segment, flushed at stop)
	Continuous bool          // append the timestamped details section at stop
	Diarize    bool
	BaseDir    string
	Model      string // for the transcript banner
	Clock      func() time.Time
}

// Controller drives one recording session: capture, segmentation, per-segment
// transcription and aggregation, until the context is cancelled. Segments are
// processed strictly one at a time, in arrival order.
type Controller struct {
	opts     Options
	recorder Recorder
	adapter  transcriber.Adapter
	diarizer diarize.Diarizer // nil unless Options.Diarize
	notifier notify.Notifier

	mu    sync.Mutex
	state State
	dir   string

	writer     *segment.Writer
	aggregator *transcript.Aggregator

	processed int
	failed    int
}

func New(opts Options, recorder Recorder, adapter transcriber.Adapter, diarizer diarize.Diarizer, notifier notify.Notifier) *Controller {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Continuous {
		opts.SegmentDur = 0
	}
	return &Controller{
		opts:     opts,
		recorder: recorder,
		adapter:  adapter,
		diarizer: diarizer,
		notifier: notifier,
		state:    Idle,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dir returns the session directory, empty until recording has started.
func (c *Controller) Dir() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dir
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run executes the session until ctx is cancelled or the audio stream ends.
// A device failure is returned before any session directory is created;
// per-segment failures are reported and the session continues.
func (c *Controller) Run(ctx context.Context) error {
	started := c.opts.Clock()

	// Open the device first: a dead microphone must not leave an empty
	// session directory behind.
	frameCh, errCh, err := c.recorder.Start(ctx)
	if err != nil {
		return fmt.Errorf("start recording: %w", err)
	}
	defer func() {
		c.recorder.Stop()
		c.recorder.Wait()
	}()

	dir := filepath.Join(c.opts.BaseDir, "session_"+started.Format("20060102_150405"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	c.mu.Lock()
	c.dir = dir
	c.mu.Unlock()

	c.aggregator = transcript.NewAggregator(dir, c.opts.Diarize)
	if err := c.aggregator.Init(c.opts.Model, started); err != nil {
		return err
	}
	c.writer = segment.NewWriter(dir, c.opts.Recording.SampleRate, c.opts.Recording.Channels)

	buffer := segment.NewBuffer(c.opts.SegmentDur, c.opts.Recording.BytesPerSecond())

	// Transcription of the final segment must survive the SIGINT that
	// ended the capture, so segment processing runs on a detached context.
	processCtx := context.WithoutCancel(ctx)

	c.setState(Recording)
	c.notifier.SessionStarted(dir)
	log.Printf("Session: recording started in %s", dir)

	running := true
	for running {
		select {
		case frame, ok := <-frameCh:
			if !ok {
				running = false
				break
			}
			if seg := buffer.Add(frame.Data); seg != nil {
				c.processSegment(processCtx, seg)
				c.setState(Recording)
			}

		case err := <-errCh:
			if err != nil {
				log.Printf("Session: capture error: %v", err)
				c.notifier.Error(err.Error())
				running = false
			}

		case <-ctx.Done():
			running = false
		}
	}

	c.setState(Stopping)
	log.Printf("Session: stopping, flushing pending audio")

	// The device is closed before the (possibly slow) final transcription.
	c.recorder.Stop()
	c.recorder.Wait()

	// Frames the capture loop delivered before shutdown are still buffered
	// on the channel; take them so no trailing audio is dropped.
	for frame := range frameCh {
		if seg := buffer.Add(frame.Data); seg != nil {
			c.processSegment(processCtx, seg)
		}
	}

	if seg := buffer.Flush(); seg != nil {
		c.processSegment(processCtx, seg)
	}

	c.setState(Finalized)
	c.notifier.SessionEnded(dir)
	log.Printf("Session: completed, %d segments transcribed, %d failed", c.processed, c.failed)
	log.Printf("Session: transcript at %s", c.aggregator.MasterPath())
	return nil
}

// processSegment writes, transcribes, and aggregates one segment. Failures
// are isolated: the segment gets a failure marker and the session goes on.
func (c *Controller) processSegment(ctx context.Context, seg *segment.Segment) {
	c.setState(Flushing)
	log.Printf("Session: segment %d complete (%v), transcribing", seg.Index, seg.Duration.Round(time.Millisecond))

	path, err := c.writer.Write(seg)
	if err != nil {
		c.reportFailure(seg.Index, fmt.Errorf("write audio: %w", err))
		return
	}

	result, err := c.adapter.TranscribeFile(ctx, path)
	if err != nil {
		c.reportFailure(seg.Index, err)
		return
	}

	if err := c.aggregate(ctx, seg.Index, path, result); err != nil {
		c.reportFailure(seg.Index, err)
		return
	}

	c.processed++
	log.Printf("Session: segment %d transcribed: %s", seg.Index, preview(result.Text))
}

func (c *Controller) aggregate(ctx context.Context, index int, wavPath string, result transcriber.Result) error {
	if c.opts.Diarize && c.diarizer != nil {
		turns, err := c.diarizer.Diarize(ctx, wavPath, result.Utterances)
		if err != nil {
			// Transcription succeeded; keep the text rather than losing
			// the segment to a diarization failure.
			log.Printf("Session: diarization failed for segment %d, keeping plain text: %v", index, err)
			return c.aggregator.AppendSegment(index, result.Text)
		}
		labeled := diarize.Label(result.Utterances, turns)
		return c.aggregator.AppendDiarized(index, labeled)
	}

	if err := c.aggregator.AppendSegment(index, result.Text); err != nil {
		return err
	}
	if c.opts.Continuous && len(result.Utterances) > 0 {
		return c.aggregator.AppendDetails(result.Utterances)
	}
	return nil
}

func (c *Controller) reportFailure(index int, err error) {
	c.failed++
	log.Printf("Session: segment %d failed: %v", index, err)
	c.notifier.SegmentFailed(index, err)
	if aerr := c.aggregator.AppendFailure(index, err); aerr != nil {
		log.Printf("Session: failed to record failure marker for segment %d: %v", index, aerr)
	}
}

func preview(text string) string {
	const limit = 80
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

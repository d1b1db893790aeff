package notify

import (
	"fmt"
	"log"
	"os/exec"
)

type Notifier interface {
	SessionStarted(dir string)
	SessionEnded(dir string)
	SegmentFailed(index int, err error)
	Error(msg string)
}

// New returns the notifier for the configured type. Disabled or unknown
// configurations get the no-op notifier.
func New(enabled bool, typ string) Notifier {
	if !enabled {
		return Nop{}
	}
	switch typ {
	case "desktop":
		return Desktop{}
	case "log":
		return Log{}
	default:
		return Nop{}
	}
}

type Desktop struct{}

func (Desktop) SessionStarted(dir string) {
	send("Murmure: Recording started", dir, false)
}

func (Desktop) SessionEnded(dir string) {
	send("Murmure: Recording completed", dir, false)
}

func (Desktop) SegmentFailed(index int, err error) {
	send(fmt.Sprintf("Murmure: Segment %d failed", index), err.Error(), true)
}

func (Desktop) Error(msg string) {
	send("Murmure: Error", msg, true)
}

func send(summary, body string, critical bool) {
	args := []string{"-a", "Murmure"}
	if critical {
		args = append(args, "-u", "critical")
	}
	args = append(args, summary, body)
	if err := exec.Command("notify-send", args...).Run(); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}

// Log writes notifications to the standard logger.
type Log struct{}

func (Log) SessionStarted(dir string) { log.Printf("Notify: recording started (%s)", dir) }
func (Log) SessionEnded(dir string)   { log.Printf("Notify: recording completed (%s)", dir) }
func (Log) SegmentFailed(index int, err error) {
	log.Printf("Notify: segment %d failed: %v", index, err)
}
func (Log) Error(msg string) { log.Printf("Notify: error: %s", msg) }

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) SessionStarted(dir string)          {}
func (Nop) SessionEnded(dir string)            {}
func (Nop) SegmentFailed(index int, err error) {}
func (Nop) Error(msg string)                   {}

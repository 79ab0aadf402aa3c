package recfx

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// StatusLine identifies a row of the status display.
type StatusLine int

const (
	// LineTitle is the banner row.
	LineTitle StatusLine = iota

	// LineHint tells the user how to move to the next effect.
	LineHint

	// LineInit reports the capture device initialization result.
	LineInit

	// LineState reports the recording state.
	LineState

	// LineProgress reports the hand-over from recording to playback.
	LineProgress

	// LineDone reports the end of playback.
	LineDone

	// LineError reports a capture fault.
	LineError
)

func (l StatusLine) String() string {
	switch l {
	case LineTitle:
		return "title"
	case LineHint:
		return "hint"
	case LineInit:
		return "init"
	case LineState:
		return "state"
	case LineProgress:
		return "progress"
	case LineDone:
		return "done"
	case LineError:
		return "error"
	default:
		return fmt.Sprintf("line(%d)", int(l))
	}
}

// Status texts.
const (
	StatusTitle          = "AUDIO RECORD"
	StatusHint           = "Press User button for next effect"
	StatusInitOK         = "AUDIO RECORD INIT OK"
	StatusInitFail       = "AUDIO RECORD INIT FAIL"
	StatusResetHint      = "Try to reset board"
	StatusRecording      = "RECORDING..."
	StatusRecordingDone  = "RECORDING DONE, START PLAYBACK..."
	StatusPlaybackDone   = "PLAYBACK DONE"
	StatusHardwareFault  = "DMA ERROR"
	StatusRecordingAbort = "RECORDING ABORTED"
)

// StatusDisplay shows one line of status text. Show is called from the
// goroutine running the session.
type StatusDisplay interface {
	Show(line StatusLine, text string)
}

// StatusFunc adapts a plain function to StatusDisplay.
type StatusFunc func(line StatusLine, text string)

// Show calls f.
func (f StatusFunc) Show(line StatusLine, text string) {
	f(line, text)
}

// StatusWriter prints status lines to an io.Writer, one per call.
type StatusWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStatusWriter creates a StatusWriter on w.
func NewStatusWriter(w io.Writer) *StatusWriter {
	return &StatusWriter{w: w}
}

// Show implements StatusDisplay. Write errors are ignored; the status display
// is best effort.
func (s *StatusWriter) Show(line StatusLine, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.w, "[%-8s] %s\r\n", line, text)
}

// LogStatus returns a StatusDisplay that logs each line at Info level.
func LogStatus(log logrus.FieldLogger) StatusDisplay {
	return StatusFunc(func(line StatusLine, text string) {
		log.WithFields(logrus.Fields{
			"function": "status",
			"line":     line.String(),
		}).Info(text)
	})
}

// show forwards to the configured display, if any.
func (c *Config) show(line StatusLine, text string) {
	if c.Status != nil {
		c.Status.Show(line, text)
	}
}

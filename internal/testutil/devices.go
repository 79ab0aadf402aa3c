package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/tphakala/go-audio-recfx/internal/capture"
	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// ErrScripted is the fault injected by scripted devices.
var ErrScripted = errors.New("scripted device failure")

// ScriptedCapture replays a fixed sequence of staging halves. Half k is
// written into staging half k%2 and announced with HalfFilled or FullFilled.
// It waits for the consumer's acknowledgement before writing the next half.
type ScriptedCapture struct {
	// Halves is the content of each successive half, each BlockSize/2 long.
	Halves [][]pcm.Sample

	// StartErr, when set, is returned by StartCapture.
	StartErr error

	// FaultAfter injects a Fault after this many halves when > 0.
	FaultAfter int

	// StallAfter stops producing after this many halves when > 0.
	StallAfter int

	starts atomic.Int32
	stops  atomic.Int32

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// StartCapture implements capture.Device.
func (d *ScriptedCapture) StartCapture(staging []pcm.Sample, n capture.Notifier) error {
	d.starts.Add(1)
	if d.StartErr != nil {
		return d.StartErr
	}

	d.stopCh = make(chan struct{})
	acker, _ := n.(interface{ Acked() <-chan struct{} })

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		half := len(staging) / 2
		for k, data := range d.Halves {
			if d.StallAfter > 0 && k >= d.StallAfter {
				return
			}
			if d.FaultAfter > 0 && k >= d.FaultAfter {
				n.Fault(ErrScripted)
				return
			}

			select {
			case <-d.stopCh:
				return
			default:
			}

			if k%2 == 0 {
				copy(staging[:half], data)
				n.HalfFilled()
			} else {
				copy(staging[half:], data)
				n.FullFilled()
			}

			if acker == nil {
				continue
			}
			select {
			case <-acker.Acked():
			case <-d.stopCh:
				return
			}
		}
	}()
	return nil
}

// StopCapture implements capture.Device and waits for the producer to exit.
func (d *ScriptedCapture) StopCapture() error {
	d.stops.Add(1)
	if d.stopCh != nil {
		select {
		case <-d.stopCh:
		default:
			close(d.stopCh)
		}
	}
	d.wg.Wait()
	return nil
}

// Starts returns how many times StartCapture was called.
func (d *ScriptedCapture) Starts() int { return int(d.starts.Load()) }

// Stops returns how many times StopCapture was called.
func (d *ScriptedCapture) Stops() int { return int(d.stops.Load()) }

// BlockHalves splits blocks of samples into the half sequence a
// ScriptedCapture expects.
func BlockHalves(blocks ...[]pcm.Sample) [][]pcm.Sample {
	var out [][]pcm.Sample
	for _, b := range blocks {
		out = append(out, b[:len(b)/2], b[len(b)/2:])
	}
	return out
}

// RecordingPlayback captures what it is asked to play.
type RecordingPlayback struct {
	// DoneAfter reports playback finished after this many polls when > 0.
	// Zero means playback never finishes on its own.
	DoneAfter int

	// StartErr and PollErr inject failures.
	StartErr error
	PollErr  error

	mu         sync.Mutex
	played     []pcm.Sample
	sampleRate int
	starts     int
	polls      int
	stops      int
}

// StartPlayback implements the playback device.
func (p *RecordingPlayback) StartPlayback(samples []pcm.Sample, sampleRate int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.starts++
	if p.StartErr != nil {
		return p.StartErr
	}
	p.played = append([]pcm.Sample(nil), samples...)
	p.sampleRate = sampleRate
	return nil
}

// PollPlayback implements the playback device.
func (p *RecordingPlayback) PollPlayback() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.polls++
	if p.PollErr != nil {
		return false, p.PollErr
	}
	return p.DoneAfter > 0 && p.polls >= p.DoneAfter, nil
}

// StopPlayback implements the playback device.
func (p *RecordingPlayback) StopPlayback() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	return nil
}

// Played returns a copy of the samples handed to StartPlayback.
func (p *RecordingPlayback) Played() []pcm.Sample {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pcm.Sample(nil), p.played...)
}

// SampleRate returns the rate passed to StartPlayback.
func (p *RecordingPlayback) SampleRate() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sampleRate
}

// Counts returns the start, poll and stop call counts.
func (p *RecordingPlayback) Counts() (starts, polls, stops int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.starts, p.polls, p.stops
}

// CountingAborter requests an abort once it has been polled After times.
// After == 0 aborts on the first poll; a negative value never aborts.
type CountingAborter struct {
	After int
	polls atomic.Int64
}

// AbortRequested implements capture.Aborter.
func (a *CountingAborter) AbortRequested() bool {
	n := a.polls.Add(1)
	return a.After >= 0 && n > int64(a.After)
}

// Polls returns how many times the aborter was polled.
func (a *CountingAborter) Polls() int {
	return int(a.polls.Load())
}

// Never is an Aborter that never aborts.
var Never = capture.AborterFunc(func() bool { return false })

// Always is an Aborter that always aborts.
var Always = capture.AborterFunc(func() bool { return true })

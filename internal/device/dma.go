// Package device provides software capture and playback collaborators: a
// synthetic tone source, a WAV file source, WAV and null sinks, and a
// keyboard aborter. The capture sources emulate a circular double-buffered
// transfer: they alternately fill the two staging halves and announce each
// one through a capture.Notifier.
package device

import (
	"errors"
	"sync"
	"time"

	"github.com/tphakala/go-audio-recfx/internal/capture"
	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// Device errors.
var (
	// ErrBusy indicates StartCapture or StartPlayback on a device that is
	// already running.
	ErrBusy = errors.New("device already running")

	// ErrFormat indicates audio data the device cannot convert to 16-bit mono
	// at the requested rate.
	ErrFormat = errors.New("unsupported audio format")
)

// defaultSampleRate is used by sources started without Init.
const defaultSampleRate = 16000

// fillFunc writes the next len(dst) samples of the source into dst.
type fillFunc func(dst []pcm.Sample)

// acker is implemented by notifiers that expose consumer acknowledgements.
type acker interface {
	Acked() <-chan struct{}
}

// dma alternately fills the two staging halves on its own goroutine, the way
// a circular transfer does, until stopped.
type dma struct {
	mu     sync.Mutex
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// start launches the transfer. pace is the wall time per half; zero runs as
// fast as the consumer drains.
func (d *dma) start(staging []pcm.Sample, n capture.Notifier, pace time.Duration, fill fillFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopCh != nil {
		return ErrBusy
	}
	if len(staging) < 2 || len(staging)%2 != 0 {
		return capture.ErrLayout
	}

	stopCh := make(chan struct{})
	d.stopCh = stopCh
	ack, _ := n.(acker)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		var tick <-chan time.Time
		if pace > 0 {
			ticker := time.NewTicker(pace)
			defer ticker.Stop()
			tick = ticker.C
		}

		half := len(staging) / 2
		for k := 0; ; k++ {
			if tick != nil {
				select {
				case <-tick:
				case <-stopCh:
					return
				}
			}

			select {
			case <-stopCh:
				return
			default:
			}

			if k%2 == 0 {
				fill(staging[:half])
				n.HalfFilled()
			} else {
				fill(staging[half:])
				n.FullFilled()
			}

			// Without acknowledgements the next half is overwritten on the
			// next tick, as the hardware would.
			if ack == nil {
				continue
			}
			select {
			case <-ack.Acked():
			case <-stopCh:
				return
			}
		}
	}()
	return nil
}

// stop ends the transfer and waits for the goroutine to exit. Stopping an
// idle transfer is a no-op.
func (d *dma) stop() {
	d.mu.Lock()
	stopCh := d.stopCh
	d.stopCh = nil
	d.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	d.wg.Wait()
}

// halfDuration is the wall time one staging half represents.
func halfDuration(blockSize, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(blockSize/2) * time.Second / time.Duration(sampleRate)
}

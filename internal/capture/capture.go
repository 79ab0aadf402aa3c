package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// DefaultPollInterval bounds how long an abort request can go unnoticed while
// waiting for a staging half.
const DefaultPollInterval = time.Millisecond

// Device is the capture collaborator. StartCapture begins filling staging
// and reports progress through n until StopCapture is called.
type Device interface {
	StartCapture(staging []pcm.Sample, n Notifier) error
	StopCapture() error
}

// Options control a capture pass.
type Options struct {
	// BlockSize is the staging buffer length in samples. Must be even.
	BlockSize int

	// PollInterval is the abort polling interval while waiting.
	// Zero selects DefaultPollInterval.
	PollInterval time.Duration

	// Abort is polled on every wait iteration. May be nil.
	Abort Aborter

	// Logger receives progress entries. Nil selects the logrus standard logger.
	Logger logrus.FieldLogger
}

// Result describes how much of the store a capture pass populated.
type Result struct {
	// Blocks is the number of fully drained staging blocks.
	Blocks int

	// Samples is the number of samples copied into the store.
	Samples int
}

// Run performs one capture pass into store: for every block it waits for the
// first half, drains it, acknowledges, then does the same for the second
// half. On cancellation or a device fault it stops the device and returns
// early; halves already copied stay in the store.
func Run(ctx context.Context, dev Device, store *pcm.Store, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	staging := make([]pcm.Sample, opts.BlockSize)
	agg, err := NewAggregator(store, staging)
	if err != nil {
		return Result{}, err
	}

	machine := NewMachine()
	if err := dev.StartCapture(staging, machine); err != nil {
		log.WithFields(logrus.Fields{
			"function": "capture.Run",
			"error":    err.Error(),
		}).Error("Capture device failed to start")
		return Result{}, fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	log.WithFields(logrus.Fields{
		"function":   "capture.Run",
		"block_size": opts.BlockSize,
		"blocks":     agg.Blocks(),
	}).Info("Capture started")

	var res Result
	for block := 0; block < agg.Blocks(); block++ {
		for _, step := range [...]struct {
			half  Half
			state State
		}{
			{FirstHalf, StateHalfReady},
			{SecondHalf, StateFullReady},
		} {
			if err := machine.Wait(ctx, step.state, opts.Abort, interval); err != nil {
				res.Samples = agg.Filled()
				stop(dev, log)
				logWaitFailure(log, block, step.half, err)
				return res, err
			}

			if err := agg.CopyHalf(block, step.half); err != nil {
				res.Samples = agg.Filled()
				stop(dev, log)
				return res, err
			}

			if err := machine.Ack(step.state); err != nil {
				res.Samples = agg.Filled()
				stop(dev, log)
				return res, fmt.Errorf("%w: %w", ErrHardware, err)
			}

			log.WithFields(logrus.Fields{
				"function": "capture.Run",
				"block":    block,
				"half":     step.half.String(),
				"offset":   HalfOffset(block, step.half, opts.BlockSize),
			}).Debug("Staging half drained")
		}
		res.Blocks = block + 1
	}

	res.Samples = agg.Filled()
	stop(dev, log)

	log.WithFields(logrus.Fields{
		"function": "capture.Run",
		"blocks":   res.Blocks,
		"samples":  res.Samples,
	}).Info("Capture complete")

	return res, nil
}

func stop(dev Device, log logrus.FieldLogger) {
	if err := dev.StopCapture(); err != nil {
		log.WithFields(logrus.Fields{
			"function": "capture.stop",
			"error":    err.Error(),
		}).Warn("Capture device did not stop cleanly")
	}
}

func logWaitFailure(log logrus.FieldLogger, block int, half Half, err error) {
	entry := log.WithFields(logrus.Fields{
		"function": "capture.Run",
		"block":    block,
		"half":     half.String(),
		"error":    err.Error(),
	})
	if errors.Is(err, ErrCancelled) {
		entry.Warn("Capture cancelled")
		return
	}
	entry.Error("Capture failed")
}

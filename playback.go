package recfx

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// playback hands the whole store to dev and polls until it finishes or an
// abort is requested. It reports whether playback ran to completion. An abort
// is a normal return: the device is stopped and completed is false.
//
// With HoldAfterPlayback set, a finished playback keeps polling until the
// abort arrives, as the demo board does; completed is then true.
func playback(ctx context.Context, cfg *Config, dev PlaybackDevice, store *pcm.Store, abort Aborter) (completed bool, err error) {
	log := cfg.logger().WithFields(logrus.Fields{
		"function": "playback",
		"samples":  store.Len(),
		"bytes":    store.ByteLen(),
	})

	if err := dev.StartPlayback(store.Samples(), cfg.SampleRate); err != nil {
		return false, fmt.Errorf("%w: start: %w", ErrPlayback, err)
	}
	log.Info("Playback started")

	ticker := time.NewTicker(cfg.pollInterval())
	defer ticker.Stop()

	done := false
	for {
		if !done {
			finished, err := dev.PollPlayback()
			if err != nil {
				stopPlayback(dev, log)
				return false, fmt.Errorf("%w: %w", ErrPlayback, err)
			}
			if finished {
				done = true
				cfg.show(LineDone, StatusPlaybackDone)
				log.Info("Playback finished")
				if !cfg.HoldAfterPlayback {
					stopPlayback(dev, log)
					return true, nil
				}
			}
		}

		if abort != nil && abort.AbortRequested() {
			stopPlayback(dev, log)
			if !done {
				log.Info("Playback aborted")
			}
			return done, nil
		}

		select {
		case <-ctx.Done():
			stopPlayback(dev, log)
			if !done {
				log.WithFields(logrus.Fields{"error": ctx.Err().Error()}).Info("Playback cancelled")
			}
			return done, nil
		case <-ticker.C:
		}
	}
}

func stopPlayback(dev PlaybackDevice, log logrus.FieldLogger) {
	if err := dev.StopPlayback(); err != nil {
		log.WithFields(logrus.Fields{"error": err.Error()}).Warn("Failed to stop playback")
	}
}

// Package recfx records a fixed-length take through a double-buffered capture
// channel, applies one audio effect to it and plays the result back.
//
// The capture device fills a staging buffer in a circular, DMA-like fashion
// and announces each completed half. The recorder drains every half into a
// contiguous recording as soon as it is announced, so the device can refill
// it while the other half is being written. Once the recording is complete,
// exactly one effect transforms it and the playback device plays it.
//
// # Effects
//
//   - [EffectPassthrough]: no change.
//   - [EffectVibrato]: pitch modulation by an 8 Hz sinusoidal read offset.
//   - [EffectNightcore]: every second sample, played twice, for double speed
//     and pitch over the same duration.
//   - [EffectReverb]: five feed-forward taps from 0.1 s to 0.5 s with gains
//     0.7 down to 0.1, clipped to 16 bits.
//   - [EffectDistortion]: hard clip at ±10000.
//
// # Quick Start
//
//	rec, err := recfx.New(recfx.DefaultConfig(), recfx.Devices{
//	    Capture:  mic,
//	    Playback: speaker,
//	    Abort:    button,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := rec.RunReverb(ctx)
//	switch {
//	case errors.Is(err, recfx.ErrCancelled):
//	    // aborted while recording; nothing was played
//	case err != nil:
//	    log.Fatal(err)
//	}
//
// # Cancellation
//
// The Aborter in [Devices] is polled at least once per Config.PollInterval
// while waiting for the capture device and while playback runs. An abort
// during capture ends the run with [ErrCancelled]; the effect never runs and
// nothing is played. An abort during playback stops the output and is not an
// error.
//
// # Errors
//
// Failures are reported with sentinel errors that can be matched with
// errors.Is: [ErrInvalidConfig], [ErrInitialization], [ErrCancelled],
// [ErrHardware] (including [ErrOverrun]) and [ErrPlayback].
package recfx

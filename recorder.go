package recfx

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-audio-recfx/internal/capture"
	"github.com/tphakala/go-audio-recfx/internal/effects"
	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// Sample is one 16-bit audio sample in unsigned storage; 32768 is silence.
type Sample = pcm.Sample

// Notifier receives half and full transfer completions from a capture device.
type Notifier = capture.Notifier

// CaptureDevice fills a staging buffer in a circular, double-buffered way.
// After StartCapture it alternately fills staging[:len/2] and
// staging[len/2:], calling HalfFilled or FullFilled after each, from its own
// goroutine, until StopCapture. A device that also exposes
// Acked() <-chan struct{} on the notifier may wait for it before reusing a
// half.
type CaptureDevice interface {
	StartCapture(staging []Sample, n Notifier) error
	StopCapture() error
}

// PlaybackDevice plays one recording at a time.
type PlaybackDevice interface {
	// StartPlayback begins playing samples. The slice is owned by the caller
	// and stays valid until StopPlayback.
	StartPlayback(samples []Sample, sampleRate int) error

	// PollPlayback reports whether the whole recording has been played.
	PollPlayback() (done bool, err error)

	// StopPlayback halts output.
	StopPlayback() error
}

// Aborter is polled on every wait iteration during capture and playback.
type Aborter = capture.Aborter

// AborterFunc adapts a plain function to Aborter.
type AborterFunc = capture.AborterFunc

// Initializer is implemented by devices that need the session sample rate
// before use.
type Initializer interface {
	Init(sampleRate int) error
}

// Devices bundles the external collaborators of a session.
type Devices struct {
	Capture  CaptureDevice
	Playback PlaybackDevice

	// Abort may be nil, in which case only the context cancels a run.
	Abort Aborter
}

// Config holds session configuration.
type Config struct {
	// SampleRate is the capture and playback rate in Hz.
	SampleRate int

	// BlockSize is the staging buffer length in samples. Must be even; each
	// half is drained as soon as the device completes it.
	BlockSize int

	// Blocks is the number of staging blocks per recording. The recording
	// holds Blocks*BlockSize samples.
	Blocks int

	// PollInterval bounds how long an abort request can go unnoticed.
	// Zero selects one millisecond.
	PollInterval time.Duration

	// HoldAfterPlayback keeps polling after playback finished until an abort
	// is requested, instead of returning straight away.
	HoldAfterPlayback bool

	// Volume is the playback volume in [0, 100]. The recorder only validates
	// it; callers build volume-aware devices such as the speaker from it.
	Volume int

	// Vibrato, Reverb and Distortion parameterize their effects.
	Vibrato    effects.VibratoConfig
	Reverb     effects.ReverbConfig
	Distortion effects.DistortionConfig

	// Logger receives structured progress entries. Nil selects the logrus
	// standard logger.
	Logger logrus.FieldLogger

	// Status receives human-readable status lines. May be nil.
	Status StatusDisplay
}

// DefaultConfig returns the demo board settings: 16 kHz, four blocks of
// 0xFFFE samples.
func DefaultConfig() *Config {
	return &Config{
		SampleRate: DefaultSampleRate,
		BlockSize:  DefaultBlockSize,
		Blocks:     DefaultBlocks,
		Volume:     DefaultVolume,
		Vibrato:    effects.DefaultVibratoConfig(),
		Reverb:     effects.DefaultReverbConfig(),
		Distortion: effects.DefaultDistortionConfig(),
	}
}

// Common errors returned by the recorder.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid recorder configuration")

	// ErrInitialization indicates the capture device could not be
	// initialized or started. Nothing was recorded or played.
	ErrInitialization = capture.ErrInitialization

	// ErrCancelled indicates an abort during capture. No effect ran and
	// nothing was played.
	ErrCancelled = capture.ErrCancelled

	// ErrHardware indicates an asynchronous capture fault, including a
	// staging overrun. It is terminal for the run.
	ErrHardware = capture.ErrHardware

	// ErrOverrun is the hardware fault raised when the device completes a
	// half the consumer has not drained yet.
	ErrOverrun = capture.ErrOverrun

	// ErrPlayback indicates a playback device failure.
	ErrPlayback = errors.New("playback failed")
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate < minSampleRate || c.SampleRate > maxSampleRate {
		return fmt.Errorf("%w: sample rate must be in [%d, %d]: %d",
			ErrInvalidConfig, minSampleRate, maxSampleRate, c.SampleRate)
	}

	if c.BlockSize < minBlockSize || c.BlockSize%2 != 0 {
		return fmt.Errorf("%w: block size must be even and at least %d: %d",
			ErrInvalidConfig, minBlockSize, c.BlockSize)
	}

	if c.Blocks < 1 {
		return fmt.Errorf("%w: blocks must be at least 1", ErrInvalidConfig)
	}

	if c.BlockSize > maxStoreSamples/c.Blocks {
		return fmt.Errorf("%w: recording of %d x %d samples exceeds %d",
			ErrInvalidConfig, c.Blocks, c.BlockSize, maxStoreSamples)
	}

	if c.PollInterval < 0 {
		return fmt.Errorf("%w: poll interval must not be negative", ErrInvalidConfig)
	}

	if c.Volume < 0 || c.Volume > maxVolume {
		return fmt.Errorf("%w: volume must be 0-%d", ErrInvalidConfig, maxVolume)
	}

	// Effect parameters are checked by building every effect once.
	for _, e := range Effects() {
		if _, err := c.newEffect(e); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	if minLen := c.Vibrato.MinLength(); c.StoreSamples() < minLen {
		return fmt.Errorf("%w: recording of %d samples is shorter than vibrato depth %.2f allows (%d)",
			ErrInvalidConfig, c.StoreSamples(), c.Vibrato.Depth, minLen)
	}

	return nil
}

// StoreSamples returns the recording length in samples.
func (c *Config) StoreSamples() int {
	return c.BlockSize * c.Blocks
}

// Duration returns the recording length in time.
func (c *Config) Duration() time.Duration {
	return time.Duration(c.StoreSamples()) * time.Second / time.Duration(c.SampleRate)
}

func (c *Config) effectContext() effects.Context {
	return effects.Context{
		SampleRate: float64(c.SampleRate),
		Vibrato:    c.Vibrato,
		Reverb:     c.Reverb,
		Distortion: c.Distortion,
	}
}

func (c *Config) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}

func (c *Config) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return capture.DefaultPollInterval
	}
	return c.PollInterval
}

package recfx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-audio-recfx/internal/analysis"
	"github.com/tphakala/go-audio-recfx/internal/capture"
	"github.com/tphakala/go-audio-recfx/internal/pcm"
	"github.com/tphakala/go-audio-recfx/internal/pipeline"
)

// Levels is the level report logged after the effect ran.
type Levels = analysis.Levels

// Result describes one record/transform/play run.
type Result struct {
	// Effect is the effect that was selected.
	Effect Effect

	// Captured is the number of samples copied into the recording. It is
	// smaller than the recording length after a cancelled or failed capture.
	Captured int

	// Completed reports that playback ran to its end. It is false when the
	// run ended before or during playback.
	Completed bool

	// Levels describes the processed recording. Zero when no effect ran.
	Levels Levels
}

// Recorder runs sessions: capture a fixed-length recording, apply one effect
// and play the result. Runs are serialized.
type Recorder struct {
	cfg  *Config
	devs Devices

	mu    sync.Mutex
	store *pcm.Store
}

// New creates a recorder. The config is validated and copied.
func New(cfg *Config, devs Devices) (*Recorder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if devs.Capture == nil || devs.Playback == nil {
		return nil, fmt.Errorf("%w: capture and playback devices are required", ErrInvalidConfig)
	}

	c := *cfg
	return &Recorder{cfg: &c, devs: devs}, nil
}

// Config returns a copy of the recorder's configuration.
func (r *Recorder) Config() Config {
	return *r.cfg
}

// RunPassthrough records and plays back unchanged.
func (r *Recorder) RunPassthrough(ctx context.Context) (Result, error) {
	return r.Run(ctx, EffectPassthrough)
}

// RunVibrato records, applies vibrato and plays back.
func (r *Recorder) RunVibrato(ctx context.Context) (Result, error) {
	return r.Run(ctx, EffectVibrato)
}

// RunNightcore records, applies nightcore and plays back.
func (r *Recorder) RunNightcore(ctx context.Context) (Result, error) {
	return r.Run(ctx, EffectNightcore)
}

// RunReverb records, applies reverb and plays back.
func (r *Recorder) RunReverb(ctx context.Context) (Result, error) {
	return r.Run(ctx, EffectReverb)
}

// RunDistortion records, applies distortion and plays back.
func (r *Recorder) RunDistortion(ctx context.Context) (Result, error) {
	return r.Run(ctx, EffectDistortion)
}

// RunNamed runs the effect with the given name.
func (r *Recorder) RunNamed(ctx context.Context, name string) (Result, error) {
	e, err := ParseEffect(name)
	if err != nil {
		return Result{}, err
	}
	return r.Run(ctx, e)
}

// Run records one fixed-length take, applies e and plays the result.
//
// ErrInitialization, ErrCancelled and ErrHardware end the run before any
// effect is applied; nothing is played. An abort during playback stops the
// output and is not an error: Result.Completed is false.
func (r *Recorder) Run(ctx context.Context, e Effect) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg := r.cfg
	res := Result{Effect: e}
	log := cfg.logger().WithFields(logrus.Fields{
		"function": "Recorder.Run",
		"effect":   e.String(),
	})

	fx, err := cfg.newEffect(e)
	if err != nil {
		return res, err
	}

	cfg.show(LineTitle, StatusTitle)
	cfg.show(LineHint, StatusHint)

	if err := r.initDevices(); err != nil {
		cfg.show(LineInit, StatusInitFail)
		cfg.show(LineState, StatusResetHint)
		log.WithFields(logrus.Fields{"error": err.Error()}).Error("Device initialization failed")
		return res, err
	}
	cfg.show(LineInit, StatusInitOK)

	store, err := pcm.NewStore(cfg.StoreSamples())
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	r.store = store

	cfg.show(LineState, StatusRecording)
	captured, err := capture.Run(ctx, r.devs.Capture, store, capture.Options{
		BlockSize:    cfg.BlockSize,
		PollInterval: cfg.PollInterval,
		Abort:        r.devs.Abort,
		Logger:       cfg.logger(),
	})
	res.Captured = captured.Samples
	if err != nil {
		r.reportCaptureFailure(err)
		return res, err
	}

	stats, err := pipeline.Run(store, fx, cfg.logger())
	if err != nil {
		return res, err
	}

	res.Levels = analysis.Measure(store.Samples(), float64(cfg.SampleRate))
	log.WithFields(res.Levels.Fields()).WithField("mode", stats.Mode).Info("Recording processed")

	cfg.show(LineProgress, StatusRecordingDone)
	res.Completed, err = playback(ctx, cfg, r.devs.Playback, store, r.devs.Abort)
	return res, err
}

// Store returns a copy of the most recent recording, or nil before the first
// run.
func (r *Recorder) Store() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store == nil {
		return nil
	}
	return r.store.Snapshot()
}

func (r *Recorder) initDevices() error {
	for _, dev := range []any{r.devs.Capture, r.devs.Playback} {
		initer, ok := dev.(Initializer)
		if !ok {
			continue
		}
		if err := initer.Init(r.cfg.SampleRate); err != nil {
			return fmt.Errorf("%w: %w", ErrInitialization, err)
		}
	}
	return nil
}

func (r *Recorder) reportCaptureFailure(err error) {
	switch {
	case errors.Is(err, ErrInitialization):
		r.cfg.show(LineInit, StatusInitFail)
		r.cfg.show(LineState, StatusResetHint)
	case errors.Is(err, ErrHardware):
		r.cfg.show(LineError, StatusHardwareFault)
	case errors.Is(err, ErrCancelled):
		r.cfg.show(LineState, StatusRecordingAbort)
	}
}

// Package pipeline runs exactly one effect over a completed recording.
//
// Effects never read the buffer they write: the pipeline freezes the store
// into a snapshot, lets the effect fill a fresh destination of the same
// length, then swaps it in. Pointwise effects, whose output sample i depends
// only on input sample i, are run directly on the store.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// Effect transforms a whole recording.
type Effect interface {
	// Name returns a human-readable name for logging.
	Name() string

	// Apply writes the transformed recording into dst. len(dst) == len(src);
	// src must be treated as read-only. Apply must not touch indices outside
	// [0, len(src)).
	Apply(dst, src []pcm.Sample) error
}

// Identity is implemented by effects that leave the recording unchanged.
type Identity interface {
	Identity() bool
}

// Pointwise is implemented by effects that may run with dst and src aliased.
type Pointwise interface {
	Pointwise() bool
}

// ErrNoEffect is returned when Run is given a nil effect.
var ErrNoEffect = errors.New("no effect selected")

// Stats describes one pipeline run.
type Stats struct {
	// Effect is the effect name.
	Effect string

	// Samples is the number of samples processed.
	Samples int

	// Mode is "identity", "pointwise" or "snapshot".
	Mode string

	// Elapsed is the wall time spent in the effect.
	Elapsed time.Duration
}

// Run applies fx to store. The transform always runs to completion; there is
// no cancellation point inside it.
func Run(store *pcm.Store, fx Effect, log logrus.FieldLogger) (Stats, error) {
	if fx == nil {
		return Stats{}, ErrNoEffect
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	stats := Stats{Effect: fx.Name(), Samples: store.Len()}
	start := time.Now()

	switch {
	case isIdentity(fx):
		stats.Mode = "identity"

	case isPointwise(fx):
		stats.Mode = "pointwise"
		samples := store.Samples()
		if err := fx.Apply(samples, samples); err != nil {
			return stats, fmt.Errorf("effect %s: %w", fx.Name(), err)
		}

	default:
		stats.Mode = "snapshot"
		src := store.Snapshot()
		dst := make([]pcm.Sample, len(src))
		if err := fx.Apply(dst, src); err != nil {
			return stats, fmt.Errorf("effect %s: %w", fx.Name(), err)
		}
		if err := store.Swap(dst); err != nil {
			return stats, err
		}
	}

	stats.Elapsed = time.Since(start)

	log.WithFields(logrus.Fields{
		"function": "pipeline.Run",
		"effect":   stats.Effect,
		"mode":     stats.Mode,
		"samples":  stats.Samples,
		"elapsed":  stats.Elapsed.String(),
	}).Info("Effect applied")

	return stats, nil
}

func isIdentity(fx Effect) bool {
	id, ok := fx.(Identity)
	return ok && id.Identity()
}

func isPointwise(fx Effect) bool {
	pw, ok := fx.(Pointwise)
	return ok && pw.Pointwise()
}

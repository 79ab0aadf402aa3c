// Package effects implements the whole-recording transforms: pass-through,
// vibrato, nightcore, multi-tap reverb and hard-clip distortion.
//
// Every effect reads a frozen source and writes a separate destination of
// the same length (see package pipeline), so no effect depends on the order
// in which it overwrites samples.
package effects

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
	"github.com/tphakala/go-audio-recfx/internal/pipeline"
)

// ErrInvalidParameter indicates an effect parameter outside its valid range.
var ErrInvalidParameter = errors.New("invalid effect parameter")

var errDuplicateEffect = errors.New("duplicate effect type")

// Context carries the session parameters every factory may need.
type Context struct {
	SampleRate float64
	Vibrato    VibratoConfig
	Reverb     ReverbConfig
	Distortion DistortionConfig
}

// Factory builds one effect instance.
type Factory func(ctx Context) (pipeline.Effect, error)

// Registry maps effect names to their factories.
type Registry struct {
	factories map[string]Factory
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for the given effect name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("empty effect name")
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateEffect, name)
	}

	r.factories[name] = factory
	r.order = append(r.order, name)

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic("effects registry: " + err.Error())
	}
}

// Lookup returns the factory for name, or nil.
func (r *Registry) Lookup(name string) Factory {
	return r.factories[name]
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// New builds the named effect.
func (r *Registry) New(name string, ctx Context) (pipeline.Effect, error) {
	factory := r.Lookup(name)
	if factory == nil {
		return nil, fmt.Errorf("%w: unknown effect %q", ErrInvalidParameter, name)
	}
	return factory(ctx)
}

// DefaultRegistry returns a registry holding the five built-in effects in
// their demo order.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(NamePassthrough, func(_ Context) (pipeline.Effect, error) {
		return Passthrough{}, nil
	})
	r.MustRegister(NameVibrato, func(ctx Context) (pipeline.Effect, error) {
		fx, err := NewVibrato(ctx.SampleRate, ctx.Vibrato)
		if err != nil {
			return nil, err
		}

		return fx, nil
	})
	r.MustRegister(NameNightcore, func(_ Context) (pipeline.Effect, error) {
		return Nightcore{}, nil
	})
	r.MustRegister(NameReverb, func(ctx Context) (pipeline.Effect, error) {
		fx, err := NewReverb(ctx.SampleRate, ctx.Reverb)
		if err != nil {
			return nil, err
		}

		return fx, nil
	})
	r.MustRegister(NameDistortion, func(ctx Context) (pipeline.Effect, error) {
		fx, err := NewDistortion(ctx.Distortion)
		if err != nil {
			return nil, err
		}

		return fx, nil
	})

	return r
}

func checkSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be > 0: %f", ErrInvalidParameter, sampleRate)
	}
	return nil
}

func checkLengths(dst, src []pcm.Sample) error {
	if len(dst) != len(src) {
		return fmt.Errorf("%w: dst %d, src %d", pcm.ErrLengthMismatch, len(dst), len(src))
	}
	return nil
}

// Ensure implementations satisfy the interface
var (
	_ pipeline.Effect    = Passthrough{}
	_ pipeline.Identity  = Passthrough{}
	_ pipeline.Effect    = (*Vibrato)(nil)
	_ pipeline.Effect    = Nightcore{}
	_ pipeline.Effect    = (*Reverb)(nil)
	_ pipeline.Effect    = (*Distortion)(nil)
	_ pipeline.Pointwise = (*Distortion)(nil)
)

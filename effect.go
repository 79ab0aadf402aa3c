package recfx

import (
	"fmt"
	"strings"

	"github.com/tphakala/go-audio-recfx/internal/effects"
	"github.com/tphakala/go-audio-recfx/internal/pipeline"
)

// Effect selects the transform applied between capture and playback.
type Effect int

const (
	// EffectPassthrough plays the recording unchanged.
	EffectPassthrough Effect = iota

	// EffectVibrato modulates pitch with a slow sinusoidal read offset.
	EffectVibrato

	// EffectNightcore doubles speed and pitch and plays the result twice.
	EffectNightcore

	// EffectReverb adds five decaying delayed copies.
	EffectReverb

	// EffectDistortion hard-clips the signal.
	EffectDistortion
)

// effectNames maps each Effect to its registry name.
var effectNames = [...]string{
	EffectPassthrough: effects.NamePassthrough,
	EffectVibrato:     effects.NameVibrato,
	EffectNightcore:   effects.NameNightcore,
	EffectReverb:      effects.NameReverb,
	EffectDistortion:  effects.NameDistortion,
}

// registry builds effect instances by name.
var registry = effects.DefaultRegistry()

// Effects returns every effect in demo order.
func Effects() []Effect {
	out := make([]Effect, len(effectNames))
	for i := range out {
		out[i] = Effect(i)
	}
	return out
}

func (e Effect) String() string {
	if e.valid() {
		return effectNames[e]
	}
	return fmt.Sprintf("effect(%d)", int(e))
}

// Next returns the effect after e, wrapping around after the last one.
func (e Effect) Next() Effect {
	return Effect((int(e) + 1) % len(effectNames))
}

func (e Effect) valid() bool {
	return e >= 0 && int(e) < len(effectNames)
}

// ParseEffect parses an effect name, case-insensitively.
func ParseEffect(name string) (Effect, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range effectNames {
		if n == name {
			return Effect(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown effect %q (want one of %s)",
		ErrInvalidConfig, name, strings.Join(effectNames[:], ", "))
}

// newEffect builds e from the configured parameters.
func (c *Config) newEffect(e Effect) (pipeline.Effect, error) {
	if !e.valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, e)
	}
	return registry.New(effectNames[e], c.effectContext())
}

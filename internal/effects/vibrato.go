package effects

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// VibratoConfig holds the modulation parameters.
type VibratoConfig struct {
	// Frequency is the modulation rate in Hz.
	Frequency float64

	// Depth is the peak read offset in samples. The offset is truncated
	// toward zero, so depths below 1 have no audible effect.
	Depth float64
}

// MinLength returns the shortest recording the effect accepts. The mirrored
// read i-off stays inside [0, n) whenever n >= 2*|off|.
func (c VibratoConfig) MinLength() int {
	return 2 * int(c.Depth)
}

// DefaultVibratoConfig returns the demo setting: 8 Hz, depth 1.5.
func DefaultVibratoConfig() VibratoConfig {
	return VibratoConfig{
		Frequency: defaultVibratoFrequency,
		Depth:     defaultVibratoDepth,
	}
}

// Vibrato modulates pitch by reading each output sample from a slowly
// oscillating offset around its own index.
type Vibrato struct {
	sampleRate float64
	frequency  float64
	depth      float64
}

// NewVibrato validates cfg and creates the effect.
func NewVibrato(sampleRate float64, cfg VibratoConfig) (*Vibrato, error) {
	if err := checkSampleRate(sampleRate); err != nil {
		return nil, err
	}
	if cfg.Frequency <= 0 || math.IsNaN(cfg.Frequency) || math.IsInf(cfg.Frequency, 0) {
		return nil, fmt.Errorf("%w: vibrato frequency must be > 0: %f", ErrInvalidParameter, cfg.Frequency)
	}
	if cfg.Depth < 0 || math.IsNaN(cfg.Depth) || math.IsInf(cfg.Depth, 0) {
		return nil, fmt.Errorf("%w: vibrato depth must be >= 0: %f", ErrInvalidParameter, cfg.Depth)
	}
	return &Vibrato{
		sampleRate: sampleRate,
		frequency:  cfg.Frequency,
		depth:      cfg.Depth,
	}, nil
}

// Name implements pipeline.Effect.
func (v *Vibrato) Name() string {
	return fmt.Sprintf("%s(%.1fHz, %.2f)", NameVibrato, v.frequency, v.depth)
}

// Offset returns the integer read offset for output index i.
func (v *Vibrato) Offset(i int) int {
	return int(math.Sin(2*math.Pi*v.frequency*float64(i)/v.sampleRate) * v.depth)
}

// Apply sets dst[i] = src[i+off] when that index is inside the recording,
// else src[i-off]. The recording must hold at least twice the largest
// offset so the mirrored index is always valid.
func (v *Vibrato) Apply(dst, src []pcm.Sample) error {
	if err := checkLengths(dst, src); err != nil {
		return err
	}
	n := len(src)
	if minLen := (VibratoConfig{Depth: v.depth}).MinLength(); n < minLen {
		return fmt.Errorf("%w: recording of %d samples too short for vibrato depth %.2f",
			ErrInvalidParameter, n, v.depth)
	}

	for i := range n {
		off := v.Offset(i)
		j := i + off
		if j < 0 || j >= n {
			j = i - off
		}
		dst[i] = src[j]
	}
	return nil
}

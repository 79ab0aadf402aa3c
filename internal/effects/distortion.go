package effects

import (
	"fmt"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// DistortionConfig sets the hard-clip level.
type DistortionConfig struct {
	// Threshold is the signed amplitude the signal is clipped to, in (0, 32767].
	Threshold int32
}

// DefaultDistortionConfig returns the demo clip level of 10000.
func DefaultDistortionConfig() DistortionConfig {
	return DistortionConfig{Threshold: defaultDistortionThreshold}
}

// Distortion hard-clips every sample to [-Threshold, Threshold].
type Distortion struct {
	threshold int32
}

// NewDistortion validates cfg and creates the effect.
func NewDistortion(cfg DistortionConfig) (*Distortion, error) {
	if cfg.Threshold <= 0 || cfg.Threshold > maxDistortionThreshold {
		return nil, fmt.Errorf("%w: distortion threshold must be in (0, %d]: %d",
			ErrInvalidParameter, maxDistortionThreshold, cfg.Threshold)
	}
	return &Distortion{threshold: cfg.Threshold}, nil
}

// Name implements pipeline.Effect.
func (d *Distortion) Name() string {
	return fmt.Sprintf("%s(%d)", NameDistortion, d.threshold)
}

// Pointwise reports that dst and src may alias.
func (d *Distortion) Pointwise() bool { return true }

// Apply re-centers each sample, clips it and stores it back.
func (d *Distortion) Apply(dst, src []pcm.Sample) error {
	if err := checkLengths(dst, src); err != nil {
		return err
	}
	for i, s := range src {
		dst[i] = pcm.FromSigned(max(-d.threshold, min(d.threshold, s.Signed())))
	}
	return nil
}

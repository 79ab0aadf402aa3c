package effects

import "github.com/tphakala/go-audio-recfx/internal/pcm"

// Passthrough replays the recording as captured.
type Passthrough struct{}

// Name implements pipeline.Effect.
func (Passthrough) Name() string { return NamePassthrough }

// Identity tells the pipeline it can skip the effect entirely.
func (Passthrough) Identity() bool { return true }

// Apply copies src into dst.
func (Passthrough) Apply(dst, src []pcm.Sample) error {
	if err := checkLengths(dst, src); err != nil {
		return err
	}
	copy(dst, src)
	return nil
}

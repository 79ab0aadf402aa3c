package effects

import (
	"fmt"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// Nightcore raises pitch and tempo by keeping every second sample, then
// repeats the shortened take so the recording keeps its length.
type Nightcore struct{}

// Name implements pipeline.Effect.
func (Nightcore) Name() string { return NameNightcore }

// Apply writes src[0], src[2], ... into the first half of dst and duplicates
// that half into the second. len(src) must be even.
func (Nightcore) Apply(dst, src []pcm.Sample) error {
	if err := checkLengths(dst, src); err != nil {
		return err
	}
	n := len(src)
	if n%2 != 0 {
		return fmt.Errorf("%w: nightcore needs an even length, got %d", ErrInvalidParameter, n)
	}

	half := n / 2
	for i := range half {
		dst[i] = src[2*i]
	}
	copy(dst[half:], dst[:half])
	return nil
}

package effects

import (
	"fmt"
	"math"
	"strings"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
	"github.com/tphakala/go-audio-recfx/internal/simdops"
)

// Tap is one delayed, gain-scaled copy of the signal.
type Tap struct {
	// Delay is the tap delay in seconds.
	Delay float64

	// Gain is the linear tap gain.
	Gain float64
}

// TailMode selects what a tap reads before the start of the recording.
type TailMode int

const (
	// TailWrap treats the recording as circular: a tap reaching before index
	// 0 reads from the end of the take. This reproduces the demo's output
	// exactly, although a real reverb tail would not come from the future.
	TailWrap TailMode = iota

	// TailSilence treats everything before index 0 as silence.
	TailSilence
)

func (m TailMode) String() string {
	switch m {
	case TailWrap:
		return "wrap"
	case TailSilence:
		return "silence"
	default:
		return fmt.Sprintf("tail(%d)", int(m))
	}
}

// ParseTailMode parses "wrap" or "silence".
func ParseTailMode(s string) (TailMode, error) {
	switch strings.ToLower(s) {
	case "wrap", "":
		return TailWrap, nil
	case "silence":
		return TailSilence, nil
	default:
		return 0, fmt.Errorf("%w: unknown reverb tail mode %q", ErrInvalidParameter, s)
	}
}

// ReverbConfig holds the tap layout.
type ReverbConfig struct {
	// Taps is the ordered tap list. Nil selects DefaultTaps; an empty,
	// non-nil slice leaves only the dry signal.
	Taps []Tap

	// Tail selects the behaviour before the start of the recording.
	Tail TailMode
}

// DefaultTaps returns the five-tap demo layout: 0.1 s to 0.5 s with gains
// 0.7 down to 0.1.
func DefaultTaps() []Tap {
	taps := make([]Tap, len(defaultTapDelays))
	for i := range taps {
		taps[i] = Tap{Delay: defaultTapDelays[i], Gain: defaultTapGains[i]}
	}
	return taps
}

// DefaultReverbConfig returns the demo tap layout with wrap-around tails.
func DefaultReverbConfig() ReverbConfig {
	return ReverbConfig{Taps: DefaultTaps(), Tail: TailWrap}
}

// Reverb is a feed-forward multi-tap delay over a frozen source:
//
//	out[i] = s[i] + Σ gain_t * s[i - delay_t]
//
// computed on re-centered amplitudes and clipped to 16 bits.
type Reverb struct {
	sampleRate float64
	taps       []Tap
	delays     []int
	tail       TailMode
}

// NewReverb converts every tap delay to round(delay * sampleRate) samples.
func NewReverb(sampleRate float64, cfg ReverbConfig) (*Reverb, error) {
	if err := checkSampleRate(sampleRate); err != nil {
		return nil, err
	}
	if cfg.Tail != TailWrap && cfg.Tail != TailSilence {
		return nil, fmt.Errorf("%w: reverb tail mode %d", ErrInvalidParameter, int(cfg.Tail))
	}

	taps := cfg.Taps
	if taps == nil {
		taps = DefaultTaps()
	}

	r := &Reverb{
		sampleRate: sampleRate,
		taps:       make([]Tap, len(taps)),
		delays:     make([]int, len(taps)),
		tail:       cfg.Tail,
	}
	for i, tap := range taps {
		if tap.Delay < 0 || math.IsNaN(tap.Delay) || math.IsInf(tap.Delay, 0) {
			return nil, fmt.Errorf("%w: tap %d delay must be >= 0: %f", ErrInvalidParameter, i, tap.Delay)
		}
		if math.IsNaN(tap.Gain) || math.IsInf(tap.Gain, 0) {
			return nil, fmt.Errorf("%w: tap %d gain must be finite: %f", ErrInvalidParameter, i, tap.Gain)
		}
		r.taps[i] = tap
		r.delays[i] = int(math.Round(tap.Delay * sampleRate))
	}
	return r, nil
}

// Name implements pipeline.Effect.
func (r *Reverb) Name() string {
	return fmt.Sprintf("%s(%d taps, %s)", NameReverb, len(r.taps), r.tail)
}

// Delays returns the per-tap delays in samples.
func (r *Reverb) Delays() []int {
	return append([]int(nil), r.delays...)
}

// Apply accumulates every tap over contiguous segments of the source. Each
// tap contributes in order, so every output sample is summed in the same
// order as a per-sample loop would.
func (r *Reverb) Apply(dst, src []pcm.Sample) error {
	if err := checkLengths(dst, src); err != nil {
		return err
	}
	n := len(src)
	if n == 0 {
		return nil
	}

	dry := make([]float64, n)
	for i, s := range src {
		dry[i] = float64(s.Signed())
	}
	wet := make([]float64, n)
	copy(wet, dry)
	scratch := make([]float64, n)

	for t, tap := range r.taps {
		d := r.delays[t]
		if r.tail == TailWrap {
			d %= n
		} else if d >= n {
			continue
		}

		// i in [d, n) reads i-d.
		simdops.AddScaled(wet[d:], dry[:n-d], scratch, tap.Gain)

		// i in [0, d) reads i-d+n.
		if r.tail == TailWrap && d > 0 {
			simdops.AddScaled(wet[:d], dry[n-d:], scratch, tap.Gain)
		}
	}

	for i, v := range wet {
		dst[i] = pcm.FromFloat(v)
	}
	return nil
}

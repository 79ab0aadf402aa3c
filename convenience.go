package recfx

import (
	"fmt"

	"github.com/tphakala/go-audio-recfx/internal/analysis"
	"github.com/tphakala/go-audio-recfx/internal/device"
	"github.com/tphakala/go-audio-recfx/internal/pcm"
	"github.com/tphakala/go-audio-recfx/internal/pipeline"
)

// Common sample rates for convenience functions.
const (
	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate, and the demo board's rate.
	RateVoIP = 16000

	// RateSpeech is a common speech processing sample rate.
	RateSpeech = 22050

	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000
)

// Apply runs effect e over an in-memory recording without any devices and
// returns the processed copy. A nil cfg selects DefaultConfig; only its
// sample rate and effect parameters are used. Nightcore keeps the trailing
// sample of an odd-length input as is.
func Apply(samples []Sample, e Effect, cfg *Config) ([]Sample, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// Nightcore needs an even length. A file may hold an odd number of
	// samples; the last one is carried through unchanged.
	if n := len(samples); e == EffectNightcore && n > 1 && n%2 != 0 {
		out, err := Apply(samples[:n-1], e, cfg)
		if err != nil {
			return nil, err
		}
		return append(out, samples[n-1]), nil
	}

	fx, err := cfg.newEffect(e)
	if err != nil {
		return nil, err
	}

	store, err := pcm.NewStore(len(samples))
	if err != nil {
		return nil, fmt.Errorf("%w: empty recording", ErrInvalidConfig)
	}
	if err := store.Write(0, samples); err != nil {
		return nil, err
	}

	if _, err := pipeline.Run(store, fx, cfg.logger()); err != nil {
		return nil, err
	}
	return store.Samples(), nil
}

// ProcessWAV applies e to a WAV file and writes the result as 16-bit mono
// PCM. The effect runs at the input file's sample rate.
func ProcessWAV(inPath, outPath string, e Effect, cfg *Config) (Levels, error) {
	clip, err := device.OpenWAV(inPath)
	if err != nil {
		return Levels{}, err
	}

	c := DefaultConfig()
	if cfg != nil {
		*c = *cfg
	}
	c.SampleRate = clip.SampleRate

	out, err := Apply(clip.Samples, e, c)
	if err != nil {
		return Levels{}, err
	}
	if err := device.CreateWAV(outPath, out, clip.SampleRate); err != nil {
		return Levels{}, err
	}
	return analysis.Measure(out, float64(clip.SampleRate)), nil
}

// ExportWAV writes a recording to path as 16-bit mono PCM.
func ExportWAV(path string, samples []Sample, sampleRate int) error {
	return device.CreateWAV(path, samples, sampleRate)
}

// NewSynthetic creates a recorder that captures a sine tone at freq Hz and
// discards playback. Useful for trying effects without audio hardware.
func NewSynthetic(cfg *Config, freq float64) (*Recorder, error) {
	return New(cfg, Devices{
		Capture:  &device.ToneSource{Frequency: freq},
		Playback: &device.NullSink{},
	})
}

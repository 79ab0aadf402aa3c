package device

import (
	"fmt"
	"math"
	"time"

	"github.com/tphakala/go-audio-recfx/internal/capture"
	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// Tone defaults.
const (
	DefaultToneFrequency = 440.0
	DefaultToneAmplitude = 12000
)

// ToneSource is a capture device producing a continuous sine tone, standing in
// for a microphone when no input file is given.
type ToneSource struct {
	// Frequency is the tone frequency in Hz. Zero selects DefaultToneFrequency.
	Frequency float64

	// Amplitude is the signed peak amplitude. Zero selects DefaultToneAmplitude.
	Amplitude int32

	// Realtime paces each half to its playing time at the configured rate.
	Realtime bool

	sampleRate int
	dma        dma
}

// Init implements the recorder's device initializer.
func (t *ToneSource) Init(sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrFormat, sampleRate)
	}
	if t.frequency()*2 >= float64(sampleRate) {
		return fmt.Errorf("%w: tone %.1f Hz above Nyquist for %d Hz", ErrFormat, t.frequency(), sampleRate)
	}
	t.sampleRate = sampleRate
	return nil
}

// StartCapture implements capture.Device.
func (t *ToneSource) StartCapture(staging []pcm.Sample, n capture.Notifier) error {
	if t.sampleRate == 0 {
		if err := t.Init(defaultSampleRate); err != nil {
			return err
		}
	}
	var pace time.Duration
	if t.Realtime {
		pace = halfDuration(len(staging), t.sampleRate)
	}
	return t.dma.start(staging, n, pace, t.oscillator())
}

// StopCapture implements capture.Device.
func (t *ToneSource) StopCapture() error {
	t.dma.stop()
	return nil
}

// oscillator returns a fill function that continues the tone across halves,
// starting at phase 0.
func (t *ToneSource) oscillator() fillFunc {
	amp := float64(t.amplitude())
	step := 2 * math.Pi * t.frequency() / float64(t.sampleRate)
	phase := 0.0
	return func(dst []pcm.Sample) {
		for i := range dst {
			dst[i] = pcm.FromSigned(int32(math.Round(amp * math.Sin(phase))))
			phase = math.Mod(phase+step, 2*math.Pi)
		}
	}
}

func (t *ToneSource) frequency() float64 {
	if t.Frequency <= 0 {
		return DefaultToneFrequency
	}
	return t.Frequency
}

func (t *ToneSource) amplitude() int32 {
	if t.Amplitude == 0 {
		return DefaultToneAmplitude
	}
	return pcm.ClampSigned(t.Amplitude)
}

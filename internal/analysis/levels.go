// Package analysis computes a short level report for a recording, logged after
// each effect so a run can be checked without listening to it.
package analysis

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
	"github.com/tphakala/go-audio-recfx/internal/simdops"
)

// MaxSpectrumWindow caps the number of samples transformed when looking for
// the dominant frequency.
const MaxSpectrumWindow = 1 << 14

// Levels summarizes a recording in signed amplitude units.
type Levels struct {
	Samples int

	// Peak is the largest absolute amplitude.
	Peak float64

	// RMS is the root mean square amplitude.
	RMS float64

	// DC is the mean amplitude.
	DC float64

	// Clipped counts samples sitting at either end of the 16-bit range.
	Clipped int

	// DominantHz is the strongest non-DC frequency in the first
	// MaxSpectrumWindow samples. Zero when the sample rate is unknown or the
	// recording is silent.
	DominantHz float64
}

// Measure analyses samples recorded at sampleRate Hz.
func Measure(samples []pcm.Sample, sampleRate float64) Levels {
	lv := Levels{Samples: len(samples)}
	if len(samples) == 0 {
		return lv
	}

	x := make([]float64, len(samples))
	for i, s := range samples {
		v := s.Signed()
		if v == pcm.MinSigned || v == pcm.MaxSigned {
			lv.Clipped++
		}
		x[i] = float64(v)
	}

	lv.Peak = math.Max(math.Abs(floats.Min(x)), math.Abs(floats.Max(x)))
	lv.DC = simdops.Sum(x) / float64(len(x))
	lv.RMS = math.Sqrt(simdops.Dot(x, x) / float64(len(x)))

	if sampleRate > 0 && lv.Peak > 0 {
		lv.DominantHz = dominantFrequency(x, sampleRate)
	}
	return lv
}

// dominantFrequency returns the frequency of the largest magnitude bin,
// ignoring DC.
func dominantFrequency(x []float64, sampleRate float64) float64 {
	n := min(len(x), MaxSpectrumWindow)
	if n < 2 {
		return 0
	}

	// Remove the mean so a constant offset does not leak into bin 1.
	window := make([]float64, n)
	copy(window, x[:n])
	floats.AddConst(-stat.Mean(window, nil), window)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, window)

	best, bestMag := 0, 0.0
	for i := 1; i < len(coeffs); i++ {
		c := coeffs[i]
		mag := real(c)*real(c) + imag(c)*imag(c)
		if mag > bestMag {
			best, bestMag = i, mag
		}
	}
	if best == 0 {
		return 0
	}
	return fft.Freq(best) * sampleRate
}

// Fields renders the report for structured logging.
func (lv Levels) Fields() logrus.Fields {
	return logrus.Fields{
		"samples":     lv.Samples,
		"peak":        math.Round(lv.Peak),
		"rms":         math.Round(lv.RMS*10) / 10,
		"dc":          math.Round(lv.DC*10) / 10,
		"clipped":     lv.Clipped,
		"dominant_hz": math.Round(lv.DominantHz),
	}
}

// Package testutil provides reusable assertions and scripted collaborators for
// recorder tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// DefaultTolerance is the float tolerance used by level assertions.
const DefaultTolerance = 1e-9

// Samples builds a sample slice from signed amplitudes.
func Samples(signed ...int32) []pcm.Sample {
	out := make([]pcm.Sample, len(signed))
	for i, v := range signed {
		out[i] = pcm.FromSigned(v)
	}
	return out
}

// Signed re-centers a sample slice for readable comparisons.
func Signed(s []pcm.Sample) []int32 {
	out := make([]int32, len(s))
	for i, v := range s {
		out[i] = v.Signed()
	}
	return out
}

// Ramp returns n samples whose raw cells are start, start+1, ...
func Ramp(n int, start pcm.Sample) []pcm.Sample {
	out := make([]pcm.Sample, n)
	for i := range out {
		out[i] = start + pcm.Sample(i)
	}
	return out
}

// Sine returns n samples of a sine tone at freq Hz with the given peak
// amplitude.
func Sine(n int, freq, sampleRate float64, amplitude int32) []pcm.Sample {
	out := make([]pcm.Sample, n)
	for i := range out {
		v := float64(amplitude) * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
		out[i] = pcm.FromSigned(int32(math.Round(v)))
	}
	return out
}

// Constant returns n copies of the signed amplitude v.
func Constant(n int, v int32) []pcm.Sample {
	out := make([]pcm.Sample, n)
	for i := range out {
		out[i] = pcm.FromSigned(v)
	}
	return out
}

// AssertSignedInRange verifies that every sample re-centers into [minVal, maxVal].
func AssertSignedInRange(t *testing.T, s []pcm.Sample, minVal, maxVal int32) bool {
	t.Helper()
	for i, v := range s {
		if v.Signed() < minVal || v.Signed() > maxVal {
			return assert.Fail(t, "sample out of range",
				"s[%d]=%d is outside range [%d, %d]", i, v.Signed(), minVal, maxVal)
		}
	}
	return true
}

// AssertAllSilent verifies that every sample holds amplitude 0.
func AssertAllSilent(t *testing.T, s []pcm.Sample) bool {
	t.Helper()
	for i, v := range s {
		if v != pcm.Silence {
			return assert.Fail(t, "sample not silent", "s[%d]=%d", i, v.Signed())
		}
	}
	return true
}

// AssertAllZeroCells verifies that every raw cell is 0, the state of a
// freshly allocated store.
func AssertAllZeroCells(t *testing.T, s []pcm.Sample) bool {
	t.Helper()
	for i, v := range s {
		if v != 0 {
			return assert.Fail(t, "cell not zero", "s[%d]=%d", i, v)
		}
	}
	return true
}

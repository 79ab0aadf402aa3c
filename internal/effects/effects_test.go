package effects

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
	"github.com/tphakala/go-audio-recfx/internal/pipeline"
	"github.com/tphakala/go-audio-recfx/internal/testutil"
)

const testRate = 16000.0

func apply(t *testing.T, fx interface {
	Apply(dst, src []pcm.Sample) error
}, src []pcm.Sample,
) []pcm.Sample {
	t.Helper()
	dst := make([]pcm.Sample, len(src))
	require.NoError(t, fx.Apply(dst, src))
	return dst
}

func TestPassthroughLeavesRecordingUnchanged(t *testing.T) {
	src := testutil.Sine(1000, 440, testRate, 20000)
	orig := append([]pcm.Sample(nil), src...)

	out := apply(t, Passthrough{}, src)
	assert.Equal(t, orig, out)
	assert.Equal(t, orig, src)
	assert.True(t, Passthrough{}.Identity())
}

func TestDistortionBoundary(t *testing.T) {
	fx, err := NewDistortion(DefaultDistortionConfig())
	require.NoError(t, err)

	tests := []struct {
		in   int32
		want int32
	}{
		{-32768, -10000},
		{-10001, -10000},
		{-10000, -10000},
		{0, 0},
		{10000, 10000},
		{10001, 10000},
		{32767, 10000},
	}

	for _, tt := range tests {
		out := apply(t, fx, testutil.Samples(tt.in))
		assert.Equal(t, tt.want, out[0].Signed(), "input %d", tt.in)
	}
}

func TestDistortionInPlace(t *testing.T) {
	fx, err := NewDistortion(DistortionConfig{Threshold: 100})
	require.NoError(t, err)

	buf := testutil.Samples(-500, -50, 50, 500)
	require.NoError(t, fx.Apply(buf, buf))
	assert.Equal(t, []int32{-100, -50, 50, 100}, testutil.Signed(buf))
	assert.True(t, fx.Pointwise())
}

func TestDistortionRejectsBadThreshold(t *testing.T) {
	for _, th := range []int32{0, -5, 40000} {
		_, err := NewDistortion(DistortionConfig{Threshold: th})
		require.ErrorIs(t, err, ErrInvalidParameter, "threshold %d", th)
	}
}

func TestNightcoreHalvesAndDuplicates(t *testing.T) {
	for _, n := range []int{2, 8, 64, 1000} {
		src := testutil.Ramp(n, 100)
		out := apply(t, Nightcore{}, src)

		require.Len(t, out, n)
		for i := range n / 2 {
			assert.Equal(t, src[2*i], out[i], "n=%d first half index %d", n, i)
		}
		assert.Equal(t, out[:n/2], out[n/2:], "n=%d second half duplicates the first", n)
	}
}

func TestNightcoreRejectsOddLength(t *testing.T) {
	src := testutil.Ramp(5, 0)
	err := Nightcore{}.Apply(make([]pcm.Sample, 5), src)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestVibratoMatchesIndexRule(t *testing.T) {
	fx, err := NewVibrato(testRate, DefaultVibratoConfig())
	require.NoError(t, err)

	n := 4000
	src := testutil.Ramp(n, 0)
	out := apply(t, fx, src)

	for i := range n {
		off := int(math.Sin(2*math.Pi*8*float64(i)/testRate) * 1.5)
		j := i + off
		if j < 0 || j >= n {
			j = i - off
		}
		require.Equal(t, src[j], out[i], "index %d", i)
	}
}

func TestVibratoOffsetsBoundedByDepth(t *testing.T) {
	fx, err := NewVibrato(testRate, VibratoConfig{Frequency: 8, Depth: 3.9})
	require.NoError(t, err)

	seen := map[int]bool{}
	for i := range int(testRate) {
		off := fx.Offset(i)
		assert.LessOrEqual(t, off, 3)
		assert.GreaterOrEqual(t, off, -3)
		seen[off] = true
	}
	assert.True(t, seen[3])
	assert.True(t, seen[-3])
}

func TestVibratoEdgesStayInRange(t *testing.T) {
	// A modulation rate equal to a quarter of the sample rate puts the
	// largest offsets right at both ends of a short recording.
	fx, err := NewVibrato(16, VibratoConfig{Frequency: 4, Depth: 2.5})
	require.NoError(t, err)

	src := testutil.Ramp(16, 1)
	out := apply(t, fx, src)
	for _, v := range out {
		assert.GreaterOrEqual(t, v, pcm.Sample(1))
		assert.LessOrEqual(t, v, pcm.Sample(16))
	}
}

func TestVibratoReadsFrozenSource(t *testing.T) {
	fx, err := NewVibrato(16, VibratoConfig{Frequency: 4, Depth: 1.5})
	require.NoError(t, err)

	src := testutil.Ramp(16, 1)
	orig := append([]pcm.Sample(nil), src...)
	_ = apply(t, fx, src)
	assert.Equal(t, orig, src)
}

func TestVibratoValidation(t *testing.T) {
	_, err := NewVibrato(0, DefaultVibratoConfig())
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewVibrato(testRate, VibratoConfig{Frequency: 0, Depth: 1})
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewVibrato(testRate, VibratoConfig{Frequency: 8, Depth: -1})
	require.ErrorIs(t, err, ErrInvalidParameter)

	fx, err := NewVibrato(testRate, VibratoConfig{Frequency: 8, Depth: 4})
	require.NoError(t, err)
	err = fx.Apply(make([]pcm.Sample, 7), make([]pcm.Sample, 7))
	require.ErrorIs(t, err, ErrInvalidParameter)
	require.NoError(t, fx.Apply(make([]pcm.Sample, 8), make([]pcm.Sample, 8)))
}

func TestVibratoShortestRecording(t *testing.T) {
	// At 12 Hz over 16 Hz the offsets of a 4-sample recording are
	// 0, -2, 0, +2: both ends fall back to the mirrored index.
	cfg := VibratoConfig{Frequency: 12, Depth: 2.5}
	require.Equal(t, 4, cfg.MinLength())

	fx, err := NewVibrato(16, cfg)
	require.NoError(t, err)
	assert.Equal(t, []int{0, -2, 0, 2}, []int{fx.Offset(0), fx.Offset(1), fx.Offset(2), fx.Offset(3)})

	out := apply(t, fx, testutil.Ramp(4, 1))
	assert.Equal(t, []pcm.Sample{1, 4, 3, 2}, out)
}

func TestEffectsRejectLengthMismatch(t *testing.T) {
	vib, err := NewVibrato(testRate, DefaultVibratoConfig())
	require.NoError(t, err)
	rev, err := NewReverb(testRate, DefaultReverbConfig())
	require.NoError(t, err)
	dist, err := NewDistortion(DefaultDistortionConfig())
	require.NoError(t, err)

	for _, fx := range []interface {
		Apply(dst, src []pcm.Sample) error
	}{Passthrough{}, vib, Nightcore{}, rev, dist} {
		err := fx.Apply(make([]pcm.Sample, 3), make([]pcm.Sample, 4))
		require.ErrorIs(t, err, pcm.ErrLengthMismatch)
	}
}

func TestRegistryDefaults(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{NamePassthrough, NameVibrato, NameNightcore, NameReverb, NameDistortion}, r.Names())

	ctx := Context{
		SampleRate: testRate,
		Vibrato:    DefaultVibratoConfig(),
		Reverb:     DefaultReverbConfig(),
		Distortion: DefaultDistortionConfig(),
	}
	for _, name := range r.Names() {
		fx, err := r.New(name, ctx)
		require.NoError(t, err, name)
		assert.Contains(t, fx.Name(), name)
	}

	_, err := r.New("chorus", ctx)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestRegistryPropagatesFactoryErrors(t *testing.T) {
	_, err := DefaultRegistry().New(NameDistortion, Context{SampleRate: testRate})
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestRegistryRegisterValidation(t *testing.T) {
	r := NewRegistry()
	factory := func(Context) (pipeline.Effect, error) { return Passthrough{}, nil }

	require.Error(t, r.Register("", factory))
	require.Error(t, r.Register("x", nil))
	require.NoError(t, r.Register("x", factory))
	require.ErrorIs(t, r.Register("x", factory), errDuplicateEffect)
	assert.Panics(t, func() { r.MustRegister("x", factory) })
	assert.Nil(t, r.Lookup("missing"))
}

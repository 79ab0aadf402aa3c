package pipeline

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

var errBroken = errors.New("broken effect")

// reverse checks that dst and src never alias in snapshot mode.
type reverse struct{ aliased bool }

func (r *reverse) Name() string { return "reverse" }

func (r *reverse) Apply(dst, src []pcm.Sample) error {
	if len(dst) > 0 && &dst[0] == &src[0] {
		r.aliased = true
	}
	for i := range src {
		dst[i] = src[len(src)-1-i]
	}
	return nil
}

type invert struct{}

func (invert) Name() string    { return "invert" }
func (invert) Pointwise() bool { return true }

func (invert) Apply(dst, src []pcm.Sample) error {
	for i, s := range src {
		dst[i] = ^s
	}
	return nil
}

type identity struct{ calls int }

func (*identity) Name() string   { return "identity" }
func (*identity) Identity() bool { return true }

func (i *identity) Apply(dst, src []pcm.Sample) error {
	i.calls++
	copy(dst, src)
	return nil
}

type failing struct{}

func (failing) Name() string { return "failing" }

func (failing) Apply(_, _ []pcm.Sample) error { return errBroken }

func newStore(t *testing.T, samples ...pcm.Sample) *pcm.Store {
	t.Helper()
	s, err := pcm.NewStore(len(samples))
	require.NoError(t, err)
	require.NoError(t, s.Write(0, samples))
	return s
}

func TestRunSnapshotMode(t *testing.T) {
	store := newStore(t, 1, 2, 3, 4, 5)
	logger, hook := test.NewNullLogger()
	fx := &reverse{}

	stats, err := Run(store, fx, logger)
	require.NoError(t, err)

	assert.False(t, fx.aliased)
	assert.Equal(t, []pcm.Sample{5, 4, 3, 2, 1}, store.Samples())
	assert.Equal(t, "snapshot", stats.Mode)
	assert.Equal(t, 5, stats.Samples)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "reverse", hook.LastEntry().Data["effect"])
}

func TestRunPointwiseMode(t *testing.T) {
	store := newStore(t, 0, 0xFFFF)
	logger, _ := test.NewNullLogger()

	stats, err := Run(store, invert{}, logger)
	require.NoError(t, err)
	assert.Equal(t, "pointwise", stats.Mode)
	assert.Equal(t, []pcm.Sample{0xFFFF, 0}, store.Samples())
}

func TestRunIdentitySkipsApply(t *testing.T) {
	store := newStore(t, 7, 8, 9)
	logger, _ := test.NewNullLogger()
	fx := &identity{}

	stats, err := Run(store, fx, logger)
	require.NoError(t, err)
	assert.Equal(t, "identity", stats.Mode)
	assert.Equal(t, 0, fx.calls)
	assert.Equal(t, []pcm.Sample{7, 8, 9}, store.Samples())
}

func TestRunFailureLeavesStoreUntouched(t *testing.T) {
	store := newStore(t, 1, 2, 3)
	logger, _ := test.NewNullLogger()

	_, err := Run(store, failing{}, logger)
	require.ErrorIs(t, err, errBroken)
	assert.Equal(t, []pcm.Sample{1, 2, 3}, store.Samples())
}

func TestRunNilEffect(t *testing.T) {
	store := newStore(t, 1)
	_, err := Run(store, nil, nil)
	require.ErrorIs(t, err, ErrNoEffect)
}

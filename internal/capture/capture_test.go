package capture_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-recfx/internal/capture"
	"github.com/tphakala/go-audio-recfx/internal/pcm"
	"github.com/tphakala/go-audio-recfx/internal/testutil"
)

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func newStore(t *testing.T, n int) *pcm.Store {
	t.Helper()
	s, err := pcm.NewStore(n)
	require.NoError(t, err)
	return s
}

func TestRunEndToEndSmallBlocks(t *testing.T) {
	dev := &testutil.ScriptedCapture{
		Halves: [][]pcm.Sample{{1, 2}, {3, 4}, {5, 6}, {7, 8}},
	}
	store := newStore(t, 8)

	res, err := capture.Run(context.Background(), dev, store, capture.Options{
		BlockSize: 4,
		Abort:     testutil.Never,
		Logger:    quietLogger(),
	})
	require.NoError(t, err)

	assert.Equal(t, []pcm.Sample{1, 2, 3, 4, 5, 6, 7, 8}, store.Samples())
	assert.Equal(t, 2, res.Blocks)
	assert.Equal(t, 8, res.Samples)
	assert.Equal(t, 1, dev.Stops())
}

func TestRunAggregatesEveryBlockInOrder(t *testing.T) {
	const (
		blockSize = 16
		blocks    = 5
	)

	var blockData [][]pcm.Sample
	for b := range blocks {
		blockData = append(blockData, testutil.Ramp(blockSize, pcm.Sample(1000*(b+1))))
	}
	dev := &testutil.ScriptedCapture{Halves: testutil.BlockHalves(blockData...)}
	store := newStore(t, blockSize*blocks)

	_, err := capture.Run(context.Background(), dev, store, capture.Options{
		BlockSize: blockSize,
		Logger:    quietLogger(),
	})
	require.NoError(t, err)

	for b := range blocks {
		got := store.Samples()[b*blockSize : (b+1)*blockSize]
		assert.Equal(t, blockData[b], got, "block %d", b)
	}
}

func TestRunAbortBeforeFirstWaitLeavesStoreUntouched(t *testing.T) {
	dev := &testutil.ScriptedCapture{
		Halves: [][]pcm.Sample{{1, 2}, {3, 4}, {5, 6}, {7, 8}},
	}
	store := newStore(t, 8)

	res, err := capture.Run(context.Background(), dev, store, capture.Options{
		BlockSize: 4,
		Abort:     testutil.Always,
		Logger:    quietLogger(),
	})
	require.ErrorIs(t, err, capture.ErrCancelled)

	assert.Equal(t, 0, res.Blocks)
	assert.Equal(t, 0, res.Samples)
	testutil.AssertAllZeroCells(t, store.Samples())
	assert.Equal(t, 1, dev.Stops())
}

func TestRunAbortMidCaptureKeepsCopiedBlocks(t *testing.T) {
	dev := &testutil.ScriptedCapture{
		Halves:     [][]pcm.Sample{{1, 2}, {3, 4}, {5, 6}, {7, 8}},
		StallAfter: 2,
	}
	store := newStore(t, 8)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := capture.Run(ctx, dev, store, capture.Options{
		BlockSize: 4,
		Logger:    quietLogger(),
	})
	require.ErrorIs(t, err, capture.ErrCancelled)

	assert.Equal(t, 1, res.Blocks)
	assert.Equal(t, 4, res.Samples)
	assert.Equal(t, []pcm.Sample{1, 2, 3, 4}, store.Samples()[:4])
	testutil.AssertAllZeroCells(t, store.Samples()[4:])
}

func TestRunDeviceFault(t *testing.T) {
	dev := &testutil.ScriptedCapture{
		Halves:     [][]pcm.Sample{{1, 2}, {3, 4}, {5, 6}, {7, 8}},
		FaultAfter: 3,
	}
	store := newStore(t, 8)

	res, err := capture.Run(context.Background(), dev, store, capture.Options{
		BlockSize: 4,
		Logger:    quietLogger(),
	})
	require.ErrorIs(t, err, capture.ErrHardware)
	require.ErrorIs(t, err, testutil.ErrScripted)
	assert.Equal(t, 6, res.Samples)
	assert.Equal(t, 1, dev.Stops())
}

func TestRunStartFailure(t *testing.T) {
	dev := &testutil.ScriptedCapture{StartErr: testutil.ErrScripted}
	store := newStore(t, 8)

	_, err := capture.Run(context.Background(), dev, store, capture.Options{
		BlockSize: 4,
		Logger:    quietLogger(),
	})
	require.ErrorIs(t, err, capture.ErrInitialization)
	require.ErrorIs(t, err, testutil.ErrScripted)
	testutil.AssertAllZeroCells(t, store.Samples())
}

func TestRunRejectsBadLayout(t *testing.T) {
	dev := &testutil.ScriptedCapture{}
	store := newStore(t, 10)

	_, err := capture.Run(context.Background(), dev, store, capture.Options{
		BlockSize: 4,
		Logger:    quietLogger(),
	})
	require.ErrorIs(t, err, capture.ErrLayout)
	assert.Equal(t, 0, dev.Starts())
}

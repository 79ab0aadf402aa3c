package device

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-recfx/internal/capture"
	"github.com/tphakala/go-audio-recfx/internal/pcm"
	"github.com/tphakala/go-audio-recfx/internal/testutil"
)

func captureInto(t *testing.T, dev capture.Device, blockSize, blocks int) *pcm.Store {
	t.Helper()
	store, err := pcm.NewStore(blockSize * blocks)
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := capture.Run(ctx, dev, store, capture.Options{
		BlockSize: blockSize,
		Logger:    logger,
	})
	require.NoError(t, err)
	require.Equal(t, blocks, res.Blocks)
	return store
}

func TestToneSourceFillsStoreContinuously(t *testing.T) {
	tone := &ToneSource{Frequency: 1000, Amplitude: 10000}
	require.NoError(t, tone.Init(16000))

	store := captureInto(t, tone, 64, 4)

	want := testutil.Sine(256, 1000, 16000, 10000)
	got := store.Samples()
	for i := range want {
		assert.InDelta(t, want[i].Signed(), got[i].Signed(), 1, "sample %d", i)
	}
}

func TestToneSourceRejectsFrequencyAboveNyquist(t *testing.T) {
	tone := &ToneSource{Frequency: 9000}
	require.ErrorIs(t, tone.Init(16000), ErrFormat)
	require.ErrorIs(t, tone.Init(0), ErrFormat)
}

func TestToneSourceBusy(t *testing.T) {
	tone := &ToneSource{}
	staging := make([]pcm.Sample, 8)

	m := capture.NewMachine()
	require.NoError(t, tone.StartCapture(staging, m))
	require.ErrorIs(t, tone.StartCapture(staging, m), ErrBusy)
	require.NoError(t, tone.StopCapture())
	require.NoError(t, tone.StopCapture())
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.wav")
	samples := testutil.Samples(-32768, -1, 0, 1, 1234, 32767)

	require.NoError(t, CreateWAV(path, samples, 16000))

	clip, err := OpenWAV(path)
	require.NoError(t, err)
	assert.Equal(t, 16000, clip.SampleRate)
	assert.Equal(t, samples, clip.Samples)
}

func TestOpenWAVErrors(t *testing.T) {
	_, err := OpenWAV("/nonexistent/file.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")

	invalid := filepath.Join(t.TempDir(), "invalid.wav")
	require.NoError(t, os.WriteFile(invalid, []byte("not a wav file"), 0o644))
	_, err = OpenWAV(invalid)
	require.ErrorIs(t, err, ErrFormat)
}

func TestTo16Bit(t *testing.T) {
	conv8, err := to16Bit(8)
	require.NoError(t, err)
	assert.Equal(t, int32(0), conv8(128))
	assert.Equal(t, int32(-32768), conv8(0))

	conv24, err := to16Bit(24)
	require.NoError(t, err)
	assert.Equal(t, int32(32767), conv24(8388607))
	assert.Equal(t, int32(-32768), conv24(-8388608))

	_, err = to16Bit(12)
	require.ErrorIs(t, err, ErrFormat)
}

func TestWAVSourceStreamsClipThenSilence(t *testing.T) {
	clip := &Clip{Samples: testutil.Ramp(10, 100), SampleRate: 8000}
	src := NewWAVSource(clip)
	require.NoError(t, src.Init(8000))

	store := captureInto(t, src, 8, 2)
	got := store.Samples()
	assert.Equal(t, clip.Samples, got[:10])
	testutil.AssertAllSilent(t, got[10:])
}

func TestWAVSourceLoops(t *testing.T) {
	clip := &Clip{Samples: testutil.Ramp(3, 1), SampleRate: 8000}
	src := NewWAVSource(clip)
	src.Loop = true

	store := captureInto(t, src, 4, 2)
	assert.Equal(t, []pcm.Sample{1, 2, 3, 1, 2, 3, 1, 2}, store.Samples())
}

func TestWAVSourceInitChecksRate(t *testing.T) {
	src := NewWAVSource(&Clip{Samples: testutil.Ramp(4, 0), SampleRate: 44100})
	require.ErrorIs(t, src.Init(16000), ErrFormat)

	require.ErrorIs(t, NewWAVSource(&Clip{SampleRate: 16000}).Init(16000), ErrFormat)
}

func TestWAVSinkWritesRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	sink := &WAVSink{Path: path}
	samples := testutil.Sine(400, 500, 8000, 3000)

	require.NoError(t, sink.StartPlayback(samples, 8000))
	require.ErrorIs(t, sink.StartPlayback(samples, 8000), ErrBusy)

	done, err := sink.PollPlayback()
	require.NoError(t, err)
	assert.True(t, done)
	require.NoError(t, sink.StopPlayback())
	assert.Equal(t, 1, sink.Writes())

	clip, err := OpenWAV(path)
	require.NoError(t, err)
	assert.Equal(t, samples, clip.Samples)
}

func TestWAVSinkRealtimeHoldsUntilPlayed(t *testing.T) {
	sink := &WAVSink{Path: filepath.Join(t.TempDir(), "out.wav"), Realtime: true}
	require.NoError(t, sink.StartPlayback(testutil.Constant(8000, 0), 8000))

	done, err := sink.PollPlayback()
	require.NoError(t, err)
	assert.False(t, done)
	require.NoError(t, sink.StopPlayback())
}

func TestNullSink(t *testing.T) {
	sink := &NullSink{}
	require.NoError(t, sink.StartPlayback(testutil.Constant(4, 0), 16000))
	done, err := sink.PollPlayback()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, sink.Plays())

	slow := &NullSink{Realtime: true}
	require.NoError(t, slow.StartPlayback(testutil.Constant(16000, 0), 16000))
	done, err = slow.PollPlayback()
	require.NoError(t, err)
	assert.False(t, done)
}

func TestKeyAborter(t *testing.T) {
	r, w := io.Pipe()
	k := NewKeyAborter(r)
	assert.False(t, k.AbortRequested())

	_, err := w.Write([]byte{' '})
	require.NoError(t, err)
	assert.Eventually(t, k.AbortRequested, time.Second, time.Millisecond)
	assert.False(t, k.QuitRequested())

	k.Reset()
	assert.False(t, k.AbortRequested())

	_, err = w.Write([]byte{'q'})
	require.NoError(t, err)
	assert.Eventually(t, k.QuitRequested, time.Second, time.Millisecond)
	assert.True(t, k.AbortRequested())

	require.NoError(t, w.Close())
	select {
	case <-k.Done():
	case <-time.After(time.Second):
		t.Fatal("reader did not stop at EOF")
	}
}

func TestRawTerminalRejectsPlainFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	_, err = RawTerminal(f)
	require.ErrorIs(t, err, ErrNotTerminal)
}

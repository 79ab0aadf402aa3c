package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineTransitions(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, StateNone, m.State())

	m.HalfFilled()
	assert.Equal(t, StateHalfReady, m.State())
	require.NoError(t, m.Ack(StateHalfReady))
	assert.Equal(t, StateNone, m.State())

	m.FullFilled()
	assert.Equal(t, StateFullReady, m.State())
	require.NoError(t, m.Ack(StateFullReady))
	assert.Equal(t, StateNone, m.State())

	assert.NoError(t, m.Err())
}

func TestMachineAckOutOfSequence(t *testing.T) {
	m := NewMachine()
	require.ErrorIs(t, m.Ack(StateHalfReady), ErrSequence)

	m.FullFilled()
	require.ErrorIs(t, m.Ack(StateHalfReady), ErrSequence)
	assert.Equal(t, StateFullReady, m.State(), "failed ack must not reset the flag")
}

func TestMachineOverrunIsHardwareFault(t *testing.T) {
	m := NewMachine()
	m.HalfFilled()
	m.FullFilled()

	err := m.Err()
	require.ErrorIs(t, err, ErrHardware)
	require.ErrorIs(t, err, ErrOverrun)
	assert.Equal(t, StateHalfReady, m.State())
}

func TestMachineKeepsFirstFault(t *testing.T) {
	m := NewMachine()
	first := errors.New("first")
	m.Fault(first)
	m.Fault(errors.New("second"))

	err := m.Err()
	require.ErrorIs(t, err, first)
	assert.NotContains(t, err.Error(), "second")
}

func TestMachineAckedToken(t *testing.T) {
	m := NewMachine()
	m.HalfFilled()
	require.NoError(t, m.Ack(StateHalfReady))

	select {
	case <-m.Acked():
	default:
		t.Fatal("expected an ack token")
	}
}

func TestWaitReturnsWhenStateReached(t *testing.T) {
	m := NewMachine()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(5 * time.Millisecond)
		m.HalfFilled()
	}()

	err := m.Wait(context.Background(), StateHalfReady, nil, time.Millisecond)
	require.NoError(t, err)
	wg.Wait()
}

func TestWaitChecksAbortBeforeState(t *testing.T) {
	m := NewMachine()
	m.HalfFilled()

	err := m.Wait(context.Background(), StateHalfReady, AborterFunc(func() bool { return true }), time.Millisecond)
	require.ErrorIs(t, err, ErrCancelled)
}

func TestWaitPollsAbortEveryIteration(t *testing.T) {
	m := NewMachine()
	polls := 0
	abort := AborterFunc(func() bool {
		polls++
		return polls > 3
	})

	err := m.Wait(context.Background(), StateHalfReady, abort, time.Millisecond)
	require.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 4, polls)
}

func TestWaitContextCancel(t *testing.T) {
	m := NewMachine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Wait(ctx, StateFullReady, nil, time.Hour)
	require.ErrorIs(t, err, ErrCancelled)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWaitReportsFault(t *testing.T) {
	m := NewMachine()
	go m.Fault(errors.New("dma transfer error"))

	err := m.Wait(context.Background(), StateHalfReady, nil, time.Hour)
	require.ErrorIs(t, err, ErrHardware)
	assert.Contains(t, err.Error(), "dma transfer error")
}

func TestWaitRejectsWrongReadyState(t *testing.T) {
	m := NewMachine()
	m.FullFilled()

	err := m.Wait(context.Background(), StateHalfReady, nil, time.Millisecond)
	require.ErrorIs(t, err, ErrHardware)
	require.ErrorIs(t, err, ErrSequence)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "none", StateNone.String())
	assert.Equal(t, "half-ready", StateHalfReady.String())
	assert.Equal(t, "full-ready", StateFullReady.String())
	assert.Equal(t, "state(7)", State(7).String())
}

// Package capture implements the double-buffered capture pass: the shared
// buffer-state flag between the capture device and the consumer, and the
// aggregator that drains each staging half into the sample store.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// State is the three-valued buffer state shared with the capture device.
type State int32

const (
	// StateNone means no staging half is waiting to be drained.
	StateNone State = iota

	// StateHalfReady means the first staging half has been filled.
	StateHalfReady

	// StateFullReady means the second staging half has been filled.
	StateFullReady
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateHalfReady:
		return "half-ready"
	case StateFullReady:
		return "full-ready"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Capture errors.
var (
	// ErrInitialization indicates the capture device could not be started.
	ErrInitialization = errors.New("capture initialization failed")

	// ErrCancelled indicates an abort was observed while waiting for a half.
	ErrCancelled = errors.New("capture cancelled")

	// ErrHardware indicates an asynchronous device fault. It is terminal for
	// the capture pass.
	ErrHardware = errors.New("capture hardware error")

	// ErrOverrun indicates the device completed a half before the consumer
	// drained the previous one. It is reported as a hardware error.
	ErrOverrun = errors.New("staging buffer overrun")

	// ErrSequence indicates a consumer acknowledgement that does not match
	// the current state.
	ErrSequence = errors.New("buffer state out of sequence")
)

// Notifier receives completion notifications from a capture device. The
// device calls it from its own goroutine, at any time.
type Notifier interface {
	// HalfFilled reports that the first staging half is complete.
	HalfFilled()

	// FullFilled reports that the second staging half is complete.
	FullFilled()

	// Fault reports a transfer or peripheral error.
	Fault(err error)
}

// Aborter is the cancellation checkpoint polled on every wait iteration.
type Aborter interface {
	AbortRequested() bool
}

// AborterFunc adapts a plain function to Aborter.
type AborterFunc func() bool

// AbortRequested calls f.
func (f AborterFunc) AbortRequested() bool {
	return f()
}

// Machine is the capture state machine. Producer notifications only move the
// flag away from StateNone; only the consumer's Ack moves it back.
//
// sync/atomic operations are sequentially consistent, so a consumer that
// loads StateHalfReady observes every staging write the device made before
// calling HalfFilled.
type Machine struct {
	state  atomic.Int32
	notify chan struct{}
	acked  chan struct{}

	mu    sync.Mutex
	fault error
}

// NewMachine returns a machine in StateNone.
func NewMachine() *Machine {
	return &Machine{
		notify: make(chan struct{}, 1),
		acked:  make(chan struct{}, 1),
	}
}

// State returns the current flag value.
func (m *Machine) State() State {
	return State(m.state.Load())
}

// HalfFilled implements Notifier.
func (m *Machine) HalfFilled() {
	m.signal(StateHalfReady)
}

// FullFilled implements Notifier.
func (m *Machine) FullFilled() {
	m.signal(StateFullReady)
}

// Fault implements Notifier. Only the first fault is kept.
func (m *Machine) Fault(err error) {
	if err == nil {
		err = errors.New("unspecified device fault")
	}
	m.mu.Lock()
	if m.fault == nil {
		m.fault = err
	}
	m.mu.Unlock()
	wake(m.notify)
}

// Err returns the recorded fault wrapped in ErrHardware, or nil.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fault == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrHardware, m.fault)
}

func (m *Machine) signal(to State) {
	if !m.state.CompareAndSwap(int32(StateNone), int32(to)) {
		m.Fault(fmt.Errorf("%w: %s notification while %s", ErrOverrun, to, m.State()))
		return
	}
	wake(m.notify)
}

// Ack resets the flag from the given ready state to StateNone once the
// consumer has drained the corresponding half.
func (m *Machine) Ack(from State) error {
	if !m.state.CompareAndSwap(int32(from), int32(StateNone)) {
		return fmt.Errorf("%w: ack %s while %s", ErrSequence, from, m.State())
	}
	wake(m.acked)
	return nil
}

// Acked delivers a token after each consumer Ack. Software capture devices
// use it to hold a half until it has been drained.
func (m *Machine) Acked() <-chan struct{} {
	return m.acked
}

// Wait blocks until the flag equals want. Every iteration first polls abort
// and ctx, so cancellation takes effect between iterations only. The poll
// interval bounds how long an abort can go unobserved when no notification
// arrives. There is no timeout.
func (m *Machine) Wait(ctx context.Context, want State, abort Aborter, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if abort != nil && abort.AbortRequested() {
			return ErrCancelled
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		if err := m.Err(); err != nil {
			return err
		}

		switch st := m.State(); st {
		case want:
			return nil
		case StateNone:
		default:
			return fmt.Errorf("%w: %w: waiting for %s, got %s", ErrHardware, ErrSequence, want, st)
		}

		select {
		case <-m.notify:
		case <-ticker.C:
		case <-ctx.Done():
		}
	}
}

// wake performs a non-blocking send on a one-slot channel.
func wake(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

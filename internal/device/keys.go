package device

import (
	"errors"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

// Control bytes that quit rather than advance.
const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
	keyEsc   = 0x1b
)

// ErrNotTerminal indicates raw mode was requested on a non-terminal.
var ErrNotTerminal = errors.New("not a terminal")

// KeyAborter turns keypresses into abort requests, the software counterpart
// of the demo board's user button. Any key requests the next effect; q,
// Ctrl-C, Ctrl-D and Esc additionally request quitting.
type KeyAborter struct {
	pressed atomic.Bool
	quit    atomic.Bool
	done    chan struct{}
}

// NewKeyAborter starts reading r on its own goroutine. Reading ends at EOF or
// on the first read error.
func NewKeyAborter(r io.Reader) *KeyAborter {
	k := &KeyAborter{done: make(chan struct{})}
	go k.read(r)
	return k
}

func (k *KeyAborter) read(r io.Reader) {
	defer close(k.done)
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			k.pressed.Store(true)
			switch buf[0] {
			case 'q', 'Q', keyCtrlC, keyCtrlD, keyEsc:
				k.quit.Store(true)
			}
		}
		if err != nil {
			return
		}
	}
}

// AbortRequested implements capture.Aborter. It stays true until Reset.
func (k *KeyAborter) AbortRequested() bool {
	return k.pressed.Load()
}

// QuitRequested reports whether a quit key was pressed.
func (k *KeyAborter) QuitRequested() bool {
	return k.quit.Load()
}

// Reset clears a pending keypress so the next run starts unaborted.
func (k *KeyAborter) Reset() {
	k.pressed.Store(false)
}

// Done is closed when the reader goroutine exits.
func (k *KeyAborter) Done() <-chan struct{} {
	return k.done
}

// RawTerminal puts f into raw mode so single keypresses are delivered without
// Enter. The returned function restores the previous mode.
func RawTerminal(f *os.File) (restore func(), err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(fd, oldState) }, nil
}

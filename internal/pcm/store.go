package pcm

import (
	"errors"
	"fmt"
)

// Store errors.
var (
	// ErrOutOfRange indicates an access outside [0, Len()).
	ErrOutOfRange = errors.New("sample store access out of range")

	// ErrLengthMismatch indicates a replacement buffer of the wrong length.
	ErrLengthMismatch = errors.New("sample store length mismatch")
)

// Store is a fixed-capacity recording buffer. It never grows: every write is
// checked against the capacity chosen at construction.
type Store struct {
	data []Sample
}

// NewStore allocates a zeroed store holding capacity samples.
func NewStore(capacity int) (*Store, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: capacity %d", ErrOutOfRange, capacity)
	}
	return &Store{data: make([]Sample, capacity)}, nil
}

// Len returns the capacity in samples.
func (s *Store) Len() int {
	return len(s.data)
}

// ByteLen returns the capacity in bytes.
func (s *Store) ByteLen() int {
	return len(s.data) * BytesPerSample
}

// Write copies src into the store starting at offset. The whole range must
// fit; partial writes never happen.
func (s *Store) Write(offset int, src []Sample) error {
	if offset < 0 || offset+len(src) > len(s.data) {
		return fmt.Errorf("%w: write [%d, %d), len %d",
			ErrOutOfRange, offset, offset+len(src), len(s.data))
	}
	copy(s.data[offset:], src)
	return nil
}

// Read copies len(dst) samples starting at offset into dst.
func (s *Store) Read(offset int, dst []Sample) error {
	if offset < 0 || offset+len(dst) > len(s.data) {
		return fmt.Errorf("%w: read [%d, %d), len %d",
			ErrOutOfRange, offset, offset+len(dst), len(s.data))
	}
	copy(dst, s.data[offset:])
	return nil
}

// Samples returns the backing slice. Callers must not retain it across a
// Swap.
func (s *Store) Samples() []Sample {
	return s.data
}

// Snapshot returns an independent copy of the contents.
func (s *Store) Snapshot() []Sample {
	out := make([]Sample, len(s.data))
	copy(out, s.data)
	return out
}

// Swap replaces the contents with buf, which must have the same length.
// The store takes ownership of buf.
func (s *Store) Swap(buf []Sample) error {
	if len(buf) != len(s.data) {
		return fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(buf), len(s.data))
	}
	s.data = buf
	return nil
}

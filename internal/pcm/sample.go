// Package pcm defines the 16-bit sample cell and the owned sample store that
// holds one complete recording.
package pcm

import "encoding/binary"

// Sample is a 16-bit signed-range value stored in an unsigned cell.
// Midpoint (32768) is silence; arithmetic that depends on sign must go
// through Signed and FromSigned.
type Sample uint16

// Sample range constants
const (
	// Midpoint is the unsigned storage value for amplitude 0.
	Midpoint = 32768

	// MinSigned and MaxSigned bound the re-centered amplitude.
	MinSigned = -32768
	MaxSigned = 32767

	// BytesPerSample is the storage width of one Sample.
	BytesPerSample = 2
)

// Silence is the Sample holding amplitude 0.
const Silence Sample = Midpoint

// Signed re-centers s around the midpoint.
func (s Sample) Signed() int32 {
	return int32(s) - Midpoint
}

// FromSigned clips v to [MinSigned, MaxSigned] and re-centers it into
// unsigned storage.
func FromSigned(v int32) Sample {
	return Sample(ClampSigned(v) + Midpoint)
}

// FromFloat rounds toward zero like a C float-to-int cast, then clips.
func FromFloat(v float64) Sample {
	switch {
	case v >= MaxSigned:
		return Sample(MaxSigned + Midpoint)
	case v <= MinSigned:
		return Sample(MinSigned + Midpoint)
	}
	return Sample(int32(v) + Midpoint)
}

// ClampSigned clips v to the representable signed 16-bit range.
func ClampSigned(v int32) int32 {
	if v > MaxSigned {
		return MaxSigned
	}
	if v < MinSigned {
		return MinSigned
	}
	return v
}

// Int16 converts s back to two's complement PCM.
func (s Sample) Int16() int16 {
	return int16(s.Signed())
}

// EncodeInt16LE renders samples as two's complement 16-bit little-endian PCM,
// the layout audio outputs consume.
func EncodeInt16LE(samples []Sample) []byte {
	out := make([]byte, 0, len(samples)*BytesPerSample)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint16(out, uint16(s.Int16()))
	}
	return out
}

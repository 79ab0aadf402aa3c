// Package simdops provides generic SIMD operations for float32 and float64 types.
// The effects and level analysis accumulate in float64; float32 is kept so
// callers can trade precision for throughput without a second code path.
package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops provides SIMD-accelerated operations for type F.
type Ops[F Float] struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []F) F

	// Sum returns the sum of all elements.
	Sum func(a []F) F

	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []F, s F)
}

var (
	ops32 = Ops[float32]{
		DotProductUnsafe: f32.DotProductUnsafe,
		Sum:              f32.Sum,
		Scale:            f32.Scale,
	}
	ops64 = Ops[float64]{
		DotProductUnsafe: f64.DotProductUnsafe,
		Sum:              f64.Sum,
		Scale:            f64.Scale,
	}
)

// For returns the Ops instance for type F.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Sum returns Σ a[i].
func Sum[F Float](a []F) F {
	if len(a) == 0 {
		return 0
	}
	return For[F]().Sum(a)
}

// AddScaled accumulates dst[i] += a[i] * s. scratch must be at least len(a)
// long; it is overwritten.
func AddScaled[F Float](dst, a, scratch []F, s F) {
	n := min(len(dst), len(a))
	if n == 0 {
		return
	}
	tmp := scratch[:n]
	For[F]().Scale(tmp, a[:n], s)
	for i, v := range tmp {
		dst[i] += v
	}
}

// Dot returns Σ a[i]*b[i] over the shorter of the two slices.
func Dot[F Float](a, b []F) F {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	return For[F]().DotProductUnsafe(a[:n], b[:n])
}

// Info describes the SIMD instruction set selected at runtime.
func Info() string {
	return cpu.Info()
}

// Package fixedpoint quantizes world offsets for persistence.
//
// Offsets are stored as 26.6 fixed-point integers: 1/64 of a unit per step.
// The precision is a power of two so decoding is a shift and a mask, and a
// value that went through Encode once comes back unchanged from any number
// of further round trips. That is what lets a region be unloaded, reloaded
// under a different absolute id and still line up with everything that was
// not moved.
package fixedpoint

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/math/fixed"
)

const (
	// Shift is log2(Precision)
	Shift = 6
	// Precision is the number of steps per unit
	Precision = 1 << Shift
	// Limit bounds the magnitude of encodable values: |v| must stay below
	// 2^(31-Shift) = 33554432 units.
	Limit = 1 << (31 - Shift)

	mask    = Precision - 1
	epsilon = 0.5 / Precision
)

// RangeError is the panic value for values that cannot be encoded
type RangeError struct {
	Value float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("fixedpoint: %v outside encodable range ±%d", e.Value, Limit)
}

// InRange reports whether v can be encoded
func InRange(v float64) bool {
	return v >= -Limit && v < Limit-epsilon
}

// Encode quantizes v to the nearest step, ties rounding up. The bias of half
// a step before flooring turns truncation into round-to-nearest. Values
// outside the range (or NaN) are a caller bug and panic.
func Encode(v float64) fixed.Int26_6 {
	if !InRange(v) {
		panic(&RangeError{Value: v})
	}
	return fixed.Int26_6(math.Floor((v + epsilon) * Precision))
}

// Decode converts a raw value back to a float
func Decode(raw fixed.Int26_6) float64 {
	whole := int32(raw) >> Shift
	frac := int32(raw) & mask
	return float64(whole) + float64(frac)/Precision
}

// Quantize returns v as it will read back after persistence
func Quantize(v float64) float64 {
	return Decode(Encode(v))
}

// EncodeVec encodes both axes of p
func EncodeVec(p mgl64.Vec2) fixed.Point26_6 {
	return fixed.Point26_6{X: Encode(p[0]), Y: Encode(p[1])}
}

// DecodeVec decodes both axes of p
func DecodeVec(p fixed.Point26_6) mgl64.Vec2 {
	return mgl64.Vec2{Decode(p.X), Decode(p.Y)}
}

// InRangeVec reports whether both axes of p can be encoded
func InRangeVec(p mgl64.Vec2) bool {
	return InRange(p[0]) && InRange(p[1])
}

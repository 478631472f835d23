package f16

import (
	"fmt"
	"math"
)

// Bits is the raw IEEE-754 binary16 bit-pattern.
//
// Layout:
//
//	sign: 1 bit  (15)
//	exp:  5 bits (14..10, bias 15)
//	frac: 10 bits (9..0)
type Bits uint16

const (
	signMask Bits = 0x8000
	expMask  Bits = 0x7C00
	fracMask Bits = 0x03FF

	expBias = 15
	expMax  = 0x1F

	f32SignMask uint32 = 0x80000000
	f32ExpMask  uint32 = 0x7F800000
	f32FracMask uint32 = 0x007FFFFF
	f32ExpBias         = 127
)

// Well-known bit patterns.
const (
	PosZero Bits = 0x0000
	NegZero Bits = 0x8000
	PosInf  Bits = 0x7C00
	NegInf  Bits = 0xFC00

	// NaN is the canonical quiet NaN produced by Encode.
	NaN Bits = 0x7E00

	// MaxValue is the largest finite half (65504).
	MaxValue Bits = 0x7BFF
	// SmallestNormal is 2^-14.
	SmallestNormal Bits = 0x0400
	// SmallestSubnormal is 2^-24 (~5.96e-8).
	SmallestSubnormal Bits = 0x0001
)

// Encode converts v to the nearest binary16 bit-pattern.
//
// v is first narrowed to float32 using Go's IEEE conversion; the float32 bits
// are then rebiased and rounded to nearest, ties to even. Magnitudes above
// 65504 (after rounding) saturate to a signed infinity, magnitudes below half
// the smallest subnormal flush to a signed zero, and every NaN becomes the
// quiet NaN 0x7E00 with the input's sign.
func Encode(v float64) Bits {
	return fromFloat32Bits(math.Float32bits(float32(v)))
}

// FromFloat32 is Encode for float32 input.
func FromFloat32(f float32) Bits {
	return fromFloat32Bits(math.Float32bits(f))
}

func fromFloat32Bits(bits uint32) Bits {
	sign := Bits((bits & f32SignMask) >> 16)
	exp := int32((bits & f32ExpMask) >> 23)
	frac := bits & f32FracMask

	if exp == 0xFF {
		if frac != 0 {
			return sign | NaN
		}
		return sign | PosInf
	}

	e16 := exp - f32ExpBias + expBias

	if e16 >= expMax {
		return sign | PosInf
	}

	if e16 <= 0 {
		// Below half of 2^-24 nothing survives rounding.
		if e16 < -10 {
			return sign
		}
		mant := frac | 0x00800000
		shift := uint32(14 - e16)
		m := roundShift(mant, shift)
		// A carry out of the 10 fraction bits lands in the exponent field and
		// yields SmallestNormal, which is the correctly rounded result.
		return sign | Bits(m)
	}

	m := roundShift(frac, 13)
	if m == 0x0400 {
		m = 0
		e16++
		if e16 >= expMax {
			return sign | PosInf
		}
	}
	return sign | Bits(uint32(e16)<<10) | Bits(m)
}

// roundShift returns v >> shift rounded to nearest, ties to even.
func roundShift(v, shift uint32) uint32 {
	m := v >> shift
	rem := v & ((uint32(1) << shift) - 1)
	half := uint32(1) << (shift - 1)
	if rem > half || (rem == half && m&1 == 1) {
		m++
	}
	return m
}

// Decode converts a binary16 bit-pattern to float64.
//
// Every half value is exactly representable as a float64, so the result is
// exact. Zero and infinity keep their sign; any NaN pattern decodes to NaN.
func Decode(h Bits) float64 {
	exp := int((h & expMask) >> 10)
	frac := float64(h & fracMask)

	var v float64
	switch exp {
	case 0:
		// (frac/1024) * 2^-14
		v = math.Ldexp(frac, -24)
	case expMax:
		if frac != 0 {
			return math.NaN()
		}
		v = math.Inf(1)
	default:
		// (1 + frac/1024) * 2^(exp-15)
		v = math.Ldexp(1024+frac, exp-expBias-10)
	}

	if h&signMask != 0 {
		return math.Copysign(v, -1)
	}
	return v
}

// ToFloat32 converts a binary16 bit-pattern to float32 by assembling the
// float32 bits directly.
func ToFloat32(h Bits) float32 {
	sign := uint32(h&signMask) << 16
	exp := uint32(h&expMask) >> 10
	frac := uint32(h & fracMask)

	switch exp {
	case 0:
		if frac == 0 {
			return math.Float32frombits(sign)
		}
		// Normalize: half subnormals have exponent -14 and no implicit 1.
		e := int32(1 - expBias)
		for frac&0x0400 == 0 {
			frac <<= 1
			e--
		}
		frac &= uint32(fracMask)
		return math.Float32frombits(sign | uint32(e+f32ExpBias)<<23 | frac<<13)
	case expMax:
		return math.Float32frombits(sign | f32ExpMask | frac<<13)
	default:
		return math.Float32frombits(sign | (exp-expBias+f32ExpBias)<<23 | frac<<13)
	}
}

// EncodeSlice encodes src into dst.
// dst must have length >= len(src).
func EncodeSlice(dst []Bits, src []float64) {
	for i, v := range src {
		dst[i] = Encode(v)
	}
}

// DecodeSlice decodes src into dst.
// dst must have length >= len(src).
func DecodeSlice(dst []float64, src []Bits) {
	for i, h := range src {
		dst[i] = Decode(h)
	}
}

// Float64 returns the decoded value of h.
func (h Bits) Float64() float64 { return Decode(h) }

// Float32 returns the decoded value of h as float32.
func (h Bits) Float32() float32 { return ToFloat32(h) }

// IsNaN reports whether h is a NaN pattern.
func (h Bits) IsNaN() bool {
	return h&expMask == expMask && h&fracMask != 0
}

// IsInf reports whether h is an infinity, according to sign.
// If sign > 0, IsInf reports whether h is positive infinity.
// If sign < 0, IsInf reports whether h is negative infinity.
// If sign == 0, IsInf reports whether h is either infinity.
func (h Bits) IsInf(sign int) bool {
	switch {
	case sign > 0:
		return h == PosInf
	case sign < 0:
		return h == NegInf
	default:
		return h&^signMask == PosInf
	}
}

// IsZero reports whether h is +0 or -0.
func (h Bits) IsZero() bool { return h&^signMask == 0 }

// IsSubnormal reports whether h is a nonzero subnormal.
func (h Bits) IsSubnormal() bool {
	return h&expMask == 0 && h&fracMask != 0
}

// Signbit reports whether the sign bit of h is set.
func (h Bits) Signbit() bool { return h&signMask != 0 }

// String formats h as a hex bit-pattern, e.g. "0x3c00".
func (h Bits) String() string {
	return fmt.Sprintf("0x%04x", uint16(h))
}

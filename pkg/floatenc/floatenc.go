// Package floatenc computes the IEEE 754 single precision bit pattern of a
// float32 with plain arithmetic instead of reading the float's storage.
//
//	| s | b1 b2 ... b8 | f1 f2 ... f23 |
//	  |         |              |
//	  |         |           fraction
//	  |      exponent
//	 sign
//
//	x = (-1)^s * 2^(b1b2...b8 - 127) * 1.f1f2...f23
//
// Fraction bits are produced until 23 are filled; the remainder is dropped
// rather than rounded. Zero takes the minimum exponent and infinity the
// maximum, both with an all-zero fraction. NaN and subnormals are not encoded.
package floatenc

import (
	"encoding/binary"
	"math"

	"floatbits/pkg/bitorder"
	"floatbits/pkg/bitvector"
	"floatbits/pkg/constants"

	"github.com/cockroachdb/errors"
)

// ErrNaN is returned when asked to encode a NaN.
var ErrNaN = errors.New("cannot encode NaN")

// Encoder produces 32-bit vectors laid out for a fixed bit order.
type Encoder struct {
	order bitorder.Order
}

func NewEncoder(order bitorder.Order) *Encoder {
	return &Encoder{order: order}
}

func (e *Encoder) Order() bitorder.Order {
	return e.order
}

// byteOrder is the byte layout whose storage matches a vector built with the
// given bit order: LSB-first bits pair with little-endian bytes.
func byteOrder(order bitorder.Order) binary.ByteOrder {
	if order == bitorder.MSBFirst {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func isInf(f float32) bool {
	return f > math.MaxFloat32
}

// Encode returns the 32-bit representation of f. The vector is assembled sign
// first; for any order other than MSBFirst it is reversed once at the end, so
// its packed bytes match the native little-endian layout of a float32.
func (e *Encoder) Encode(f float32) (*bitvector.BitVector, error) {
	if math.IsNaN(float64(f)) {
		return nil, ErrNaN
	}
	out, err := bitvector.New(constants.FloatBits, e.order)
	if err != nil {
		return nil, errors.Wrap(err, "allocating float vector")
	}

	var sign byte
	if f < 0 {
		sign = 1
		f = -f
	}
	signVect, err := bitvector.FromBytes([]byte{sign}, constants.SignPrecision, bitorder.LSBFirst)
	if err != nil {
		return nil, err
	}

	exponent := ExponentBaseTwo(f)
	expVect, err := e.exponentVector(exponent + constants.ExpBias)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding exponent %d", exponent)
	}

	intVect, decVect := e.fractionVectors(f, exponent)

	bitvector.CopyInto(signVect, out, constants.SignOffset)
	bitvector.CopyInto(expVect, out, constants.ExpOffset)
	bitvector.CopyInto(intVect, out, constants.FractOffset)
	bitvector.CopyInto(decVect, out, constants.FractOffset+intVect.Len())

	// Everything above is big-endian; flip to match the storage convention.
	if e.order != bitorder.MSBFirst {
		out.Reverse()
	}
	return out, nil
}

// ExponentBaseTwo returns the exponent of |f| in binary scientific notation,
// bounded by constants.MinExp and constants.MaxExp.
func ExponentBaseTwo(f float32) int {
	if f < 0 {
		f = -f
	}
	switch {
	case f == 0:
		// zero takes the minimum exponent
		return constants.MinExp
	case isInf(f):
		// infinity takes the maximum exponent
		return constants.MaxExp
	case f >= 1:
		// count halvings until the integer part reaches zero
		pos := 0
		for v := f; v >= 1 && pos <= constants.MaxExp+1; pos++ {
			v /= 2
		}
		return pos - 1
	default:
		pos := 0
		for v := f; v < 1 && pos > constants.MinExp; pos-- {
			v *= 2
		}
		return pos
	}
}

// exponentVector lays the biased exponent out as the bytes of a 32-bit
// integer, normalizes it so index k holds bit k, cuts it to ExpPrecision bits
// and reverses it so the most significant bit comes first whatever the order.
func (e *Encoder) exponentVector(biased int) (*bitvector.BitVector, error) {
	raw := make([]byte, 4)
	byteOrder(e.order).PutUint32(raw, uint32(biased))

	v, err := bitvector.FromBytes(raw, 8*len(raw), e.order)
	if err != nil {
		return nil, err
	}
	if e.order == bitorder.MSBFirst {
		v.Reverse()
	}
	if err := v.Truncate(constants.ExpPrecision); err != nil {
		return nil, err
	}
	v.Reverse()
	return v, nil
}

// splitMagnitude separates f into its integer part and fractional remainder.
// Floats of 2^24 and above have no fractional bits.
func splitMagnitude(f float32) (float64, float32) {
	if f >= 1<<24 {
		return float64(f), 0
	}
	whole := uint32(f)
	return float64(whole), f - float32(whole)
}

// fractionVectors returns the big-endian fraction bits split into the part
// taken from the integer portion of f and the part taken from its fractional
// remainder. Their lengths always sum to FractPrecision. The implicit leading
// 1 is dropped from whichever pass meets it first.
func (e *Encoder) fractionVectors(f float32, exponent int) (*bitvector.BitVector, *bitvector.BitVector) {
	intPartLength := 0
	if exponent > 0 {
		intPartLength = exponent
	}
	intVect, _ := bitvector.New(min(constants.FractPrecision, intPartLength), e.order)
	decVect, _ := bitvector.New(constants.FractPrecision-intVect.Len(), e.order)

	if f == 0 || isInf(f) {
		return intVect, decVect
	}

	intPart, decimalPart := splitMagnitude(f)
	firstBitDiscarded := false

	power := 1.0
	for i := 0; i < intPartLength; i++ {
		power *= 2
	}
	for i := 0; i <= intVect.Len(); i, power = i+1, power/2 {
		if i == 0 {
			if intPart >= power {
				intPart -= power
				firstBitDiscarded = true
			}
			continue
		}
		if power > intPart {
			_ = intVect.SetBit(i-1, 0)
		} else {
			_ = intVect.SetBit(i-1, 1)
			intPart -= power
		}
	}

	for i := 0; i < decVect.Len() && decimalPart != 0; {
		decimalPart *= 2
		if firstBitDiscarded {
			if decimalPart >= 1 {
				_ = decVect.SetBit(i, 1)
				decimalPart -= 1
			} else {
				_ = decVect.SetBit(i, 0)
			}
			i++
		} else if decimalPart >= 1 {
			decimalPart -= 1
			firstBitDiscarded = true
		}
	}
	return intVect, decVect
}

// Native returns the bits the host would store for f, copied out of
// math.Float32bits into a vector whose bytes follow the same layout Encode
// produces for order.
func Native(f float32, order bitorder.Order) (*bitvector.BitVector, error) {
	raw := make([]byte, 4)
	byteOrder(order).PutUint32(raw, math.Float32bits(f))
	return bitvector.FromBytes(raw, constants.FloatBits, order)
}

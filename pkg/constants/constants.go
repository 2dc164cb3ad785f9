package constants

import "fmt"

const BitsPerByte = 8

// MaxByteValue is the all-ones byte.
const MaxByteValue = 0xFF

// Single precision layout: | s | b1 ... b8 | f1 ... f23 |
const (
	SignPrecision  = 1
	ExpPrecision   = 8
	FractPrecision = 23
	FloatBits      = SignPrecision + ExpPrecision + FractPrecision

	ExpBias = 127
	MaxExp  = (1 << ExpPrecision) - ExpBias - 1 // 128, reserved for infinity
	MinExp  = -ExpBias                          // -127, reserved for zero
)

// Bit offsets of each field in the big-endian composed vector.
const (
	SignOffset  = 0
	ExpOffset   = SignOffset + SignPrecision
	FractOffset = ExpOffset + ExpPrecision
)

// BitOffset is a bit position inside a single byte.
type BitOffset uint8

func NewBitOffset(value uint) (BitOffset, error) {
	if value >= BitsPerByte {
		return 0, fmt.Errorf("invalid bit offset value: must be less than %d", BitsPerByte)
	}
	return BitOffset(value), nil
}

// NumBytes returns the number of bytes needed to hold bitLen bits.
func NumBytes(bitLen int) int {
	if bitLen <= 0 {
		return 0
	}
	return (bitLen + BitsPerByte - 1) / BitsPerByte
}

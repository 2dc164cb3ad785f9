// Package bitorder holds the single-byte bit primitives. Every mapping from a
// logical bit index to a physical bit goes through Order.Mask.
package bitorder

import (
	"strings"

	"floatbits/pkg/constants"
	bounds "floatbits/pkg/errors"

	"github.com/cockroachdb/errors"
)

// Order is the bit numbering convention within a byte.
type Order uint8

const (
	// MSBFirst numbers bits from the most significant end: index 0 is 0x80.
	MSBFirst Order = iota
	// LSBFirst numbers bits from the least significant end: index 0 is 0x01.
	LSBFirst
)

func (o Order) String() string {
	switch o {
	case MSBFirst:
		return "msb-first"
	case LSBFirst:
		return "lsb-first"
	default:
		return "unknown"
	}
}

// Valid reports whether o is one of the known conventions.
func (o Order) Valid() bool {
	return o == MSBFirst || o == LSBFirst
}

// ParseOrder accepts "msb"/"big" and "lsb"/"little" spellings.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "msb", "msb-first", "big", "big-endian":
		return MSBFirst, nil
	case "lsb", "lsb-first", "little", "little-endian":
		return LSBFirst, nil
	default:
		return 0, errors.Newf("unknown bit order %q", s)
	}
}

// Bit collapses a raw byte to a bit: any nonzero value is 1.
func Bit(raw byte) byte {
	if raw == 0 {
		return 0
	}
	return 1
}

// BitChar returns '0' or '1' for a raw byte.
func BitChar(raw byte) byte {
	if Bit(raw) == 0 {
		return '0'
	}
	return '1'
}

func offset(op string, index uint) (constants.BitOffset, error) {
	off, err := constants.NewBitOffset(index)
	if err != nil {
		return 0, bounds.BoundsErrorf(op, int(index), constants.BitsPerByte)
	}
	return off, nil
}

func (o Order) mask(off constants.BitOffset) byte {
	if o == LSBFirst {
		return 1 << off
	}
	return 1 << (constants.BitsPerByte - 1 - off)
}

// Mask returns a byte with only the bit at logical index set, e.g. for index 3:
//
//	index 0 1 2 3 4 5 6 7
//	bits  0 0 0 1 0 0 0 0
//
// which is 0x10 under MSBFirst and 0x08 under LSBFirst.
func (o Order) Mask(index uint) (byte, error) {
	off, err := offset("mask", index)
	if err != nil {
		return 0, err
	}
	return o.mask(off), nil
}

// InvertedMask returns the complement of Mask.
func (o Order) InvertedMask(index uint) (byte, error) {
	off, err := offset("inverted mask", index)
	if err != nil {
		return 0, err
	}
	return constants.MaxByteValue ^ o.mask(off), nil
}

// GetBit returns the bit (0 or 1) at logical index of b.
func (o Order) GetBit(b byte, index uint) (byte, error) {
	off, err := offset("get bit", index)
	if err != nil {
		return 0, err
	}
	return Bit(b & o.mask(off)), nil
}

// SetBit writes Bit(value) at logical index of *b. An out-of-range index
// leaves *b untouched.
func (o Order) SetBit(b *byte, index uint, value byte) error {
	off, err := offset("set bit", index)
	if err != nil {
		return err
	}
	m := o.mask(off)
	*b &^= m
	if Bit(value) == 1 {
		*b |= m
	}
	return nil
}

// FormatByte renders b as eight '0'/'1' characters in logical index order.
func (o Order) FormatByte(b byte) string {
	var buf [constants.BitsPerByte]byte
	for i := range buf {
		buf[i] = BitChar(b & o.mask(constants.BitOffset(i)))
	}
	return string(buf[:])
}

// FormatBytes renders each byte with FormatByte, separated by delimiter.
// A zero delimiter inserts nothing.
func (o Order) FormatBytes(bs []byte, delimiter byte) string {
	var sb strings.Builder
	sb.Grow(len(bs) * (constants.BitsPerByte + 1))
	for i, b := range bs {
		if i > 0 && delimiter != 0 {
			sb.WriteByte(delimiter)
		}
		sb.WriteString(o.FormatByte(b))
	}
	return sb.String()
}

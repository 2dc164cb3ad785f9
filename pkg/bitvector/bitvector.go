// Package bitvector implements a fixed-length sequence of bits packed into
// bytes. The length is tracked separately from the backing store, so a vector
// may end part way through its last byte. Bits within each byte are numbered
// according to the vector's bitorder.Order.
//
// A BitVector is not safe for concurrent mutation.
package bitvector

import (
	"strings"

	"floatbits/pkg/bitorder"
	"floatbits/pkg/constants"
	bounds "floatbits/pkg/errors"

	"github.com/cockroachdb/errors"
)

// BitVector represents a sequence of bits stored in a []byte.
type BitVector struct {
	buf    []byte         // underlying byte slice, exactly NumBytes(bitLen) long
	bitLen int            // number of bits stored in the vector
	order  bitorder.Order // bit numbering within each byte
}

func newVector(bitLen int, order bitorder.Order) *BitVector {
	return &BitVector{
		buf:    make([]byte, constants.NumBytes(bitLen)),
		bitLen: bitLen,
		order:  order,
	}
}

// New returns a zeroed BitVector holding bitLen bits.
func New(bitLen int, order bitorder.Order) (*BitVector, error) {
	if bitLen < 0 {
		return nil, errors.Newf("invalid bit length %d", bitLen)
	}
	if !order.Valid() {
		return nil, errors.Newf("invalid bit order %d", order)
	}
	return newVector(bitLen, order), nil
}

// FromBytes creates a BitVector of bitLen bits from a copy of the leading
// bytes of b. The returned vector never aliases b.
func FromBytes(b []byte, bitLen int, order bitorder.Order) (*BitVector, error) {
	bv, err := New(bitLen, order)
	if err != nil {
		return nil, err
	}
	if len(b) < len(bv.buf) {
		return nil, errors.Newf("bit length %d requires at least %d bytes, got %d", bitLen, len(bv.buf), len(b))
	}
	copy(bv.buf, b)
	return bv, nil
}

// FromString parses a string of '0' and '1' characters. Any other character is
// treated as a delimiter and skipped.
func FromString(s string, order bitorder.Order) (*BitVector, error) {
	n := strings.Count(s, "0") + strings.Count(s, "1")
	bv, err := New(n, order)
	if err != nil {
		return nil, err
	}
	i := 0
	for _, c := range s {
		switch c {
		case '0', '1':
			bv.set(i, byte(c-'0'))
			i++
		}
	}
	return bv, nil
}

// Len returns the total number of bits in the vector.
func (bv *BitVector) Len() int {
	return bv.bitLen
}

// Order returns the bit numbering convention of the vector.
func (bv *BitVector) Order() bitorder.Order {
	return bv.order
}

// Bytes returns a copy of the packed bits. Unused bits of the final byte are
// unspecified.
func (bv *BitVector) Bytes() []byte {
	out := make([]byte, len(bv.buf))
	copy(out, bv.buf)
	return out
}

// locate maps a bit index to its byte and the bit offset inside that byte.
func locate(i int) (int, uint) {
	return i / constants.BitsPerByte, uint(i % constants.BitsPerByte)
}

func (bv *BitVector) inRange(i int) bool {
	return i >= 0 && i < bv.bitLen
}

// get and set assume i is in range.
func (bv *BitVector) get(i int) byte {
	byteIndex, off := locate(i)
	bit, _ := bv.order.GetBit(bv.buf[byteIndex], off)
	return bit
}

func (bv *BitVector) set(i int, value byte) {
	byteIndex, off := locate(i)
	_ = bv.order.SetBit(&bv.buf[byteIndex], off, value)
}

// BitAt returns the bit (0 or 1) at position i.
func (bv *BitVector) BitAt(i int) (byte, error) {
	if !bv.inRange(i) {
		return 0, bounds.BoundsErrorf("get bit", i, bv.bitLen)
	}
	return bv.get(i), nil
}

// SetBit sets the bit at position i to Bit(value). An out-of-range index
// leaves the vector unchanged.
func (bv *BitVector) SetBit(i int, value byte) error {
	if !bv.inRange(i) {
		return bounds.BoundsErrorf("set bit", i, bv.bitLen)
	}
	bv.set(i, value)
	return nil
}

// Format renders the vector as '0'/'1' characters, one group of eight per
// byte, with delimiter between groups. A zero delimiter inserts nothing. The
// result holds exactly Len() bits; padding in the last byte is not rendered.
func (bv *BitVector) Format(delimiter byte) string {
	if bv.bitLen == 0 {
		return ""
	}
	str := bv.order.FormatBytes(bv.buf, delimiter)

	delimSpace := 0
	if delimiter != 0 {
		delimSpace = len(bv.buf) - 1
	}
	return str[:bv.bitLen+delimSpace]
}

func (bv *BitVector) String() string {
	return bv.Format(' ')
}

// ShiftRight moves every bit shift positions towards the end of the vector
// in place. Bits pushed past the end are lost and the first shift positions
// become 0.
//
// Indices in the same residue class mod shift only exchange values with each
// other, so each class is walked once, carrying the previous value forward.
func (bv *BitVector) ShiftRight(shift int) {
	if shift <= 0 {
		return
	}
	for r := 0; r < shift && r < bv.bitLen; r++ {
		var previous byte
		for j := r; j < bv.bitLen; j += shift {
			tmp := bv.get(j)
			bv.set(j, previous)
			previous = tmp
		}
	}
}

// ShiftLeft moves every bit shift positions towards index 0 in place. Bits
// pushed below 0 are lost and the last shift positions become 0.
func (bv *BitVector) ShiftLeft(shift int) {
	if shift <= 0 {
		return
	}
	for r := bv.bitLen - 1; r >= 0 && r > bv.bitLen-shift-1; r-- {
		var previous byte
		for j := r; j >= 0; j -= shift {
			tmp := bv.get(j)
			bv.set(j, previous)
			previous = tmp
		}
	}
}

// Concat returns a new vector holding the bits of a followed by the bits of
// b. The result uses a's bit order. Neither operand is modified.
func Concat(a, b *BitVector) *BitVector {
	out := newVector(a.bitLen+b.bitLen, a.order)
	CopyInto(a, out, 0)
	CopyInto(b, out, a.bitLen)
	return out
}

// CopyInto overwrites dest[offset], dest[offset+1], ... with src[0], src[1], ...
// If src does not fit, only the bits that fit are copied. It returns the
// number of bits copied, which is 0 when offset is outside dest. src and dest
// must not be the same vector.
func CopyInto(src, dest *BitVector, offset int) int {
	if offset < 0 || offset >= dest.bitLen {
		return 0
	}
	n := 0
	for i := 0; i < src.bitLen && offset+i < dest.bitLen; i++ {
		dest.set(offset+i, src.get(i))
		n++
	}
	return n
}

// Reverse reverses the bit order of the vector in place.
func (bv *BitVector) Reverse() {
	for i := 0; i < bv.bitLen/2; i++ {
		opposite := bv.bitLen - i - 1
		tmp := bv.get(i)
		bv.set(i, bv.get(opposite))
		bv.set(opposite, tmp)
	}
}

// Truncate shortens the vector to its first n bits and releases the bytes
// that are no longer needed.
func (bv *BitVector) Truncate(n int) error {
	if n < 0 || n > bv.bitLen {
		return bounds.BoundsErrorf("truncate", n, bv.bitLen+1)
	}
	buf := make([]byte, constants.NumBytes(n))
	copy(buf, bv.buf)
	bv.buf = buf
	bv.bitLen = n
	return nil
}

// Clone returns an independent copy of the vector.
func (bv *BitVector) Clone() *BitVector {
	return &BitVector{
		buf:    bv.Bytes(),
		bitLen: bv.bitLen,
		order:  bv.order,
	}
}

// Equal reports whether both vectors hold the same bits in the same logical
// positions. Bit order and padding are ignored.
func (bv *BitVector) Equal(other *BitVector) bool {
	if bv.bitLen != other.bitLen {
		return false
	}
	for i := 0; i < bv.bitLen; i++ {
		if bv.get(i) != other.get(i) {
			return false
		}
	}
	return true
}

package serializer

import (
	"math"
	"math/bits"

	"floatbits/pkg/bitorder"
	"floatbits/pkg/bitvector"
	"floatbits/pkg/constants"
	"floatbits/pkg/types"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// SerializeRecord encodes r as
//
//	value bits (4, LE) | order (1) | bit length (natural) | byte count (natural) | bytes | run id (16)
func SerializeRecord(r types.Record) []byte {
	data := r.Bits.Bytes()

	buf := make([]byte, 0, 4+1+9+9+len(data)+16)
	buf = append(buf, EncodeLittleEndian(4, uint64(math.Float32bits(r.Value)))...)
	buf = append(buf, byte(r.Order))
	buf = append(buf, EncodeGeneralNatural(uint64(r.Bits.Len()))...)
	buf = append(buf, EncodeGeneralNatural(uint64(len(data)))...)
	buf = append(buf, data...)
	buf = append(buf, r.RunID[:]...)
	return buf
}

// DeserializeRecord is the inverse of SerializeRecord.
func DeserializeRecord(data []byte) (types.Record, error) {
	var r types.Record
	p := data

	if len(p) < 5 {
		return r, errors.Newf("record too short: %d bytes", len(data))
	}
	r.Value = math.Float32frombits(uint32(DecodeLittleEndian(p[:4])))
	r.Order = bitorder.Order(p[4])
	if !r.Order.Valid() {
		return r, errors.Newf("invalid bit order %d in record", p[4])
	}
	p = p[5:]

	bitLen, n, ok := DecodeGeneralNatural(p)
	if !ok {
		return r, errors.New("failed to decode bit length")
	}
	p = p[n:]

	byteCount, n, ok := DecodeGeneralNatural(p)
	if !ok {
		return r, errors.New("failed to decode byte count")
	}
	p = p[n:]

	if byteCount != uint64(constants.NumBytes(int(bitLen))) {
		return r, errors.Newf("bit length %d does not fit %d bytes", bitLen, byteCount)
	}
	if uint64(len(p)) < byteCount+16 {
		return r, errors.Newf("record truncated: need %d bytes, have %d", byteCount+16, len(p))
	}
	bv, err := bitvector.FromBytes(p[:byteCount], int(bitLen), r.Order)
	if err != nil {
		return r, err
	}
	r.Bits = bv
	p = p[byteCount:]

	r.RunID, err = uuid.FromBytes(p[:16])
	if err != nil {
		return r, err
	}
	p = p[16:]

	if len(p) > 0 {
		return r, errors.Newf("extra %d bytes left after deserialization (data: %x)", len(p), data)
	}
	return r, nil
}

// EncodeLittleEndian writes the low octets bytes of x, least significant first.
func EncodeLittleEndian(octets int, x uint64) []byte {
	out := make([]byte, octets)
	for i := range out {
		out[i] = byte(x >> (8 * i))
	}
	return out
}

func DecodeLittleEndian(b []byte) uint64 {
	var x uint64
	for i, v := range b {
		x |= uint64(v) << (8 * i)
	}
	return x
}

// EncodeGeneralNatural writes x in one to nine octets. The number of leading
// ones in the first octet, l, counts the little-endian octets that follow;
// the rest of the first octet holds the bits of x above them. Values of 2^56
// and beyond use 0xFF and all eight octets.
func EncodeGeneralNatural(x uint64) []byte {
	l := 0
	if x > 0 {
		l = (bits.Len64(x) - 1) / 7
	}
	if l >= 8 {
		return append([]byte{0xFF}, EncodeLittleEndian(8, x)...)
	}
	prefix := byte(0xFF) << (8 - l)
	header := prefix | byte(x>>(8*l))
	return append([]byte{header}, EncodeLittleEndian(l, x)...)
}

// DecodeGeneralNatural returns the decoded value and the number of octets it
// occupied.
func DecodeGeneralNatural(p []byte) (x uint64, n int, ok bool) {
	if len(p) == 0 {
		return 0, 0, false
	}
	l := bits.LeadingZeros8(^p[0])
	if l == 8 {
		if len(p) < 9 {
			return 0, 0, false
		}
		return DecodeLittleEndian(p[1:9]), 9, true
	}
	if len(p) < 1+l {
		return 0, 0, false
	}
	high := uint64(p[0] & (0xFF >> l))
	return high<<(8*l) | DecodeLittleEndian(p[1:1+l]), 1 + l, true
}

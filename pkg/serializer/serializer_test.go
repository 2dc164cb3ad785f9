package serializer

import (
	"bytes"
	"strings"
	"testing"

	"floatbits/pkg/bitorder"
	"floatbits/pkg/bitvector"
	"floatbits/pkg/types"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

var bitVectorComparer = cmp.Comparer(func(a, b *bitvector.BitVector) bool {
	return a.Order() == b.Order() && a.Equal(b)
})

func TestGeneralNatural(t *testing.T) {
	tests := []struct {
		x    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x80}},
		{32, []byte{0x20}},
		{1 << 14, []byte{0xC0, 0x00, 0x40}},
		{1<<56 - 1, []byte{0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{0x1234, []byte{0x92, 0x34}},
		{1 << 21, []byte{0xE0, 0x00, 0x00, 0x20}},
		{0x0A0B0C0D0E, []byte{0xF8, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A}},
		{1 << 56, []byte{0xFF, 0, 0, 0, 0, 0, 0, 0, 1}},
		{1<<64 - 1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tt := range tests {
		got := EncodeGeneralNatural(tt.x)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("EncodeGeneralNatural(%d) = %x, want %x", tt.x, got, tt.want)
		}
		x, n, ok := DecodeGeneralNatural(append(got, 0xAA))
		if !ok || x != tt.x || n != len(tt.want) {
			t.Errorf("DecodeGeneralNatural(%x) = (%d, %d, %v), want (%d, %d, true)", got, x, n, ok, tt.x, len(tt.want))
		}
	}
	if _, _, ok := DecodeGeneralNatural(nil); ok {
		t.Error("DecodeGeneralNatural(nil) ok = true")
	}
	for _, short := range [][]byte{{0xC0, 0x00}, {0xFF, 1, 2, 3}} {
		if _, _, ok := DecodeGeneralNatural(short); ok {
			t.Errorf("DecodeGeneralNatural(%x) ok = true, want false", short)
		}
	}
}

func TestLittleEndian(t *testing.T) {
	for _, octets := range []int{1, 2, 3, 4, 5, 6, 7, 8} {
		x := uint64(0x0102030405060708) & (uint64(1)<<(8*uint(octets)) - 1)
		if octets == 8 {
			x = 0x0102030405060708
		}
		b := EncodeLittleEndian(octets, x)
		if len(b) != octets {
			t.Fatalf("EncodeLittleEndian(%d) length = %d", octets, len(b))
		}
		if b[0] != 0x08 {
			t.Errorf("EncodeLittleEndian(%d) first byte = %#x, want 0x08", octets, b[0])
		}
		if got := DecodeLittleEndian(b); got != x {
			t.Errorf("DecodeLittleEndian(%x) = %#x, want %#x", b, got, x)
		}
	}
}

func testRecord(t *testing.T) types.Record {
	t.Helper()
	bv, err := bitvector.FromString("00000000 00000000 00000001 11111100", bitorder.LSBFirst)
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	return types.Record{
		Value: 1.0,
		Order: bitorder.LSBFirst,
		Bits:  bv,
		RunID: uuid.MustParse("6f1c1d3e-8a4b-4d2a-9c1e-2b3a4c5d6e7f"),
	}
}

func TestRecordRoundTrip(t *testing.T) {
	rec := testRecord(t)
	data := SerializeRecord(rec)
	if len(data) != 4+1+1+1+4+16 {
		t.Errorf("serialized length = %d, want 27", len(data))
	}

	got, err := DeserializeRecord(data)
	if err != nil {
		t.Fatalf("DeserializeRecord returned error: %v", err)
	}
	if diff := cmp.Diff(rec, got, bitVectorComparer); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestDeserializeRecordErrors(t *testing.T) {
	data := SerializeRecord(testRecord(t))

	badOrder := append([]byte(nil), data...)
	badOrder[4] = 9

	badCount := append([]byte(nil), data...)
	badCount[6] = 3

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"header only", data[:5]},
		{"truncated", data[:len(data)-1]},
		{"extra bytes", append(append([]byte(nil), data...), 0x00)},
		{"bad order", badOrder},
		{"bad byte count", badCount},
	}
	for _, tt := range tests {
		if _, err := DeserializeRecord(tt.data); err == nil {
			t.Errorf("%s: DeserializeRecord succeeded, want error", tt.name)
		}
	}

	_, err := DeserializeRecord(badCount)
	if err == nil || !strings.Contains(err.Error(), "bit length 32 does not fit 3 bytes") {
		t.Errorf("DeserializeRecord(bad byte count) error = %v", err)
	}
}

package constants

import "testing"

func TestNewBitOffset(t *testing.T) {
	for i := uint(0); i < BitsPerByte; i++ {
		off, err := NewBitOffset(i)
		if err != nil {
			t.Fatalf("NewBitOffset(%d) returned error: %v", i, err)
		}
		if uint(off) != i {
			t.Errorf("NewBitOffset(%d) = %d", i, off)
		}
	}
	if _, err := NewBitOffset(BitsPerByte); err == nil {
		t.Errorf("NewBitOffset(%d) succeeded, want error", BitsPerByte)
	}
}

func TestNumBytes(t *testing.T) {
	tests := []struct {
		bits, want int
	}{
		{0, 0}, {1, 1}, {7, 1}, {8, 1}, {9, 2}, {32, 4}, {33, 5},
	}
	for _, tt := range tests {
		if got := NumBytes(tt.bits); got != tt.want {
			t.Errorf("NumBytes(%d) = %d, want %d", tt.bits, got, tt.want)
		}
	}
}

func TestFloatLayout(t *testing.T) {
	if FloatBits != 32 {
		t.Errorf("FloatBits = %d, want 32", FloatBits)
	}
	if MaxExp != 128 || MinExp != -127 {
		t.Errorf("exponent bounds = [%d, %d], want [-127, 128]", MinExp, MaxExp)
	}
	if FractOffset != 9 {
		t.Errorf("FractOffset = %d, want 9", FractOffset)
	}
}

package zero

import "testing"

func TestIsZeroAllZero(t *testing.T) {
	for _, size := range []int{16, 17, 31, 32, 65536} {
		buf := make([]byte, size)
		if !IsZero(buf) {
			t.Fatalf("size %d: expected zero buffer to be detected as zero", size)
		}
	}
}

func TestIsZeroNonZeroInHead(t *testing.T) {
	buf := make([]byte, 64)
	buf[0] = 1
	if IsZero(buf) {
		t.Fatal("expected non-zero byte in first 16 bytes to be detected")
	}
}

func TestIsZeroNonZeroInTail(t *testing.T) {
	buf := make([]byte, 64)
	buf[63] = 1
	if IsZero(buf) {
		t.Fatal("expected non-zero byte in tail to be detected")
	}
}

func TestIsZeroExactly16(t *testing.T) {
	buf := make([]byte, 16)
	if !IsZero(buf) {
		t.Fatal("expected 16 zero bytes to be detected as zero")
	}
	buf[15] = 1
	if IsZero(buf) {
		t.Fatal("expected non-zero last byte to be detected")
	}
}

func TestIsZeroUnalignedSlice(t *testing.T) {
	backing := make([]byte, 128)
	buf := backing[3:67] // deliberately unaligned sub-slice
	if !IsZero(buf) {
		t.Fatal("expected zero sub-slice to be detected as zero")
	}
	buf[40] = 0xff
	if IsZero(buf) {
		t.Fatal("expected non-zero byte in sub-slice to be detected")
	}
}

func TestIsZeroPanicsOnShortBuffer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for buffer shorter than 16 bytes")
		}
	}()
	IsZero(make([]byte, 15))
}

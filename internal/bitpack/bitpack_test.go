package bitpack

import (
	"bytes"
	"testing"
)

func TestPackedLen(t *testing.T) {
	tests := []struct {
		bits int
		want int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{7, 1},
		{8, 1},
		{9, 2},
		{16, 2},
		{32, 4},
	}
	for _, tt := range tests {
		if got := PackedLen(tt.bits); got != tt.want {
			t.Errorf("PackedLen(%d) = %d, want %d", tt.bits, got, tt.want)
		}
	}
}

func TestPack(t *testing.T) {
	t.Run("msb first", func(t *testing.T) {
		got := Pack([]bool{true, false, true, false, false, false, false, true})
		if !bytes.Equal(got, []byte{0xA1}) {
			t.Errorf("got %x want a1", got)
		}
	})

	t.Run("one bit leaves trailing zeros", func(t *testing.T) {
		got := Pack([]bool{true})
		if !bytes.Equal(got, []byte{0x80}) {
			t.Errorf("got %x want 80", got)
		}
	})

	t.Run("nine bits use two bytes", func(t *testing.T) {
		got := Pack([]bool{false, false, false, false, false, false, false, false, true})
		if !bytes.Equal(got, []byte{0x00, 0x80}) {
			t.Errorf("got %x want 0080", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := Pack(nil); len(got) != 0 {
			t.Errorf("expected empty payload, got %x", got)
		}
	})
}

func TestUnpack(t *testing.T) {
	bits := []bool{true, true, false, true, false, false, true, false, true, true}
	got := Unpack(Pack(bits), len(bits))
	if len(got) != len(bits) {
		t.Fatalf("len %d want %d", len(got), len(bits))
	}
	for i := range bits {
		if got[i] != bits[i] {
			t.Errorf("bit %d: got %v want %v", i, got[i], bits[i])
		}
	}

	if Unpack([]byte{0xff}, 9) != nil {
		t.Error("expected nil for short buffer")
	}
}

func TestSetBit(t *testing.T) {
	buf := make([]byte, 2)
	SetBit(buf, 0, true)
	SetBit(buf, 15, true)
	if buf[0] != 0x80 || buf[1] != 0x01 {
		t.Fatalf("got %x", buf)
	}
	SetBit(buf, 0, false)
	if buf[0] != 0 {
		t.Errorf("clear bit: got %x", buf[0])
	}
	if !Bit(buf, 15) || Bit(buf, 14) {
		t.Errorf("Bit read back mismatch: %x", buf)
	}
}

func TestEqual(t *testing.T) {
	a := []byte{0xAB, 0xC0}
	b := []byte{0xAB, 0xC0, 0xFF}
	if !Equal(a, 10, b, 10) {
		t.Error("expected equal prefixes")
	}
	if Equal(a, 10, b, 11) {
		t.Error("different bit counts must not be equal")
	}
	if Equal([]byte{0xAB}, 8, []byte{0xAC}, 8) {
		t.Error("different bytes must not be equal")
	}
	if !Equal(nil, 0, nil, 0) {
		t.Error("zero-bit payloads must be equal")
	}
}

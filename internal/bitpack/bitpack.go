// Package bitpack — упаковка битов MSB-first в байты: бит 0 — старший бит первого байта,
// хвостовые неиспользуемые биты последнего байта всегда нулевые.
package bitpack

import "bytes"

// PackedLen возвращает число байт для bits бит: ceil(bits/8); для bits <= 0 — 0.
func PackedLen(bits int) int {
	if bits <= 0 {
		return 0
	}
	return (bits + 7) / 8
}

// SetBit записывает бит v в позицию pos (MSB-first). Байт должен быть уже выделен.
func SetBit(buf []byte, pos int, v bool) {
	byteIdx := pos / 8
	mask := byte(1) << uint(7-pos%8)
	if v {
		buf[byteIdx] |= mask
	} else {
		buf[byteIdx] &^= mask
	}
}

// Bit читает бит в позиции pos (MSB-first).
func Bit(buf []byte, pos int) bool {
	return (buf[pos/8]>>uint(7-pos%8))&1 == 1
}

// Pack упаковывает последовательность битов в PackedLen(len(bits)) байт.
func Pack(bits []bool) []byte {
	out := make([]byte, PackedLen(len(bits)))
	for i, v := range bits {
		if v {
			SetBit(out, i, true)
		}
	}
	return out
}

// Unpack распаковывает n бит из buf. Если buf короче, чем нужно, возвращает nil.
func Unpack(buf []byte, n int) []bool {
	if n < 0 || len(buf) < PackedLen(n) {
		return nil
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = Bit(buf, i)
	}
	return out
}

// Equal сравнивает две упакованные последовательности: число бит и байты payload.
func Equal(a []byte, aBits int, b []byte, bBits int) bool {
	if aBits != bBits {
		return false
	}
	n := PackedLen(aBits)
	if len(a) < n || len(b) < n {
		return false
	}
	return bytes.Equal(a[:n], b[:n])
}

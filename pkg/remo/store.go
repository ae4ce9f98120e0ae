package remo

import (
	"encoding/binary"

	"github.com/shiwa/remo/internal/bitpack"
)

// Раскладка заголовка сессии в буфере (little-endian):
//
//	0: averageT u16 (мкс)
//	2: averageSeparator u16 (10 мкс)
//	4: format u8
//	5: frameCount u8
//	6: offsets [MaxFrames]u16 — смещения записей от конца заголовка
//
// Запись кадра по смещению (выровнено на 2):
//
//	0: kind u8
//	1: reserved u8
//	2: elapsed u16 (10 мкс, с насыщением)
//	4: bitCount u16
//	6: payload [ceil(bitCount/8)]
const (
	MaxFrames  = 10
	HeaderSize = hdrOffsets + 2*MaxFrames

	hdrAverageT   = 0
	hdrAverageSep = 2
	hdrFormat     = 4
	hdrFrameCount = 5
	hdrOffsets    = 6

	recKind          = 0
	recElapsed       = 2
	recBits          = 4
	recordHeaderSize = 6

	maxBits    = 0xFFFF
	maxOffset  = 0xFFFF
	maxBufSize = HeaderSize + maxOffset + recordHeaderSize
)

// store интерпретирует буфер вызывающей стороны как заголовок + массив записей переменной длины.
// Памятью не владеет; ёмкость — len(buf).
type store struct {
	buf []byte
}

func (s *store) reset(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrBufferTooSmall
	}
	if len(buf) > maxBufSize {
		buf = buf[:maxBufSize]
	}
	clear(buf)
	s.buf = buf
	return nil
}

func (s *store) ready() bool {
	return len(s.buf) >= HeaderSize
}

func (s *store) count() int {
	return int(s.buf[hdrFrameCount])
}

func (s *store) format() Format {
	return Format(s.buf[hdrFormat])
}

func (s *store) setFormat(f Format) {
	s.buf[hdrFormat] = byte(f)
}

func (s *store) averageT() uint16 {
	return binary.LittleEndian.Uint16(s.buf[hdrAverageT:])
}

func (s *store) setAverageT(us uint16) {
	binary.LittleEndian.PutUint16(s.buf[hdrAverageT:], us)
}

func (s *store) averageSeparator() uint16 {
	return binary.LittleEndian.Uint16(s.buf[hdrAverageSep:])
}

func (s *store) setAverageSeparator(units uint16) {
	binary.LittleEndian.PutUint16(s.buf[hdrAverageSep:], units)
}

func (s *store) offset(i int) int {
	return int(binary.LittleEndian.Uint16(s.buf[hdrOffsets+2*i:]))
}

// record возвращает срез буфера, начинающийся с записи i.
func (s *store) record(i int) []byte {
	return s.buf[HeaderSize+s.offset(i):]
}

func (s *store) kind(i int) Kind {
	return Kind(s.record(i)[recKind])
}

func (s *store) setKind(i int, k Kind) {
	s.record(i)[recKind] = byte(k)
}

func (s *store) bits(i int) int {
	return int(binary.LittleEndian.Uint16(s.record(i)[recBits:]))
}

func (s *store) setElapsed(i int, units uint16) {
	binary.LittleEndian.PutUint16(s.record(i)[recElapsed:], units)
}

func (s *store) elapsed(i int) uint16 {
	return binary.LittleEndian.Uint16(s.record(i)[recElapsed:])
}

// payload возвращает упакованные биты записи i. Для SameAsFirst байты записи
// уже отданы следующей записи, поэтому читается payload первого кадра.
func (s *store) payload(i int) []byte {
	src := i
	if s.kind(i) == SameAsFirst {
		src = 0
	}
	rec := s.record(src)
	return rec[recordHeaderSize : recordHeaderSize+bitpack.PackedLen(s.bits(src))]
}

// size — реальный размер записи i в буфере.
func (s *store) size(i int) int {
	n := recordHeaderSize
	if s.kind(i) == Data {
		n += bitpack.PackedLen(s.bits(i))
	}
	return n
}

// appendFrame добавляет пустую запись kind. Смещение считается от реального размера
// предыдущей записи и выравнивается на 2; до записи проверяется, что всё помещается.
func (s *store) appendFrame(k Kind) error {
	n := s.count()
	if n >= MaxFrames {
		return ErrBufferOverflow
	}
	off := 0
	if n > 0 {
		off = s.offset(n-1) + s.size(n-1)
		off += off & 1
	}
	if off > maxOffset || HeaderSize+off+recordHeaderSize > len(s.buf) {
		return ErrBufferOverflow
	}
	rec := s.buf[HeaderSize+off : HeaderSize+off+recordHeaderSize]
	clear(rec)
	rec[recKind] = byte(k)
	binary.LittleEndian.PutUint16(s.buf[hdrOffsets+2*n:], uint16(off))
	s.buf[hdrFrameCount] = byte(n + 1)
	return nil
}

// writeBit дописывает бит в текущую запись. Новый байт payload обнуляется при выделении;
// счётчик бит увеличивается после записи бита, так что bitCount и payload всегда согласованы.
func (s *store) writeBit(v bool) error {
	n := s.count()
	if n == 0 {
		return ErrBufferOverflow
	}
	start := HeaderSize + s.offset(n-1)
	bits := s.bits(n - 1)
	if bits >= maxBits {
		return ErrBufferOverflow
	}
	pos := start + recordHeaderSize + bits/8
	if bits%8 == 0 {
		if pos >= len(s.buf) {
			return ErrBufferOverflow
		}
		s.buf[pos] = 0
	}
	bitpack.SetBit(s.buf[start+recordHeaderSize:], bits, v)
	binary.LittleEndian.PutUint16(s.buf[start+recBits:], uint16(bits+1))
	return nil
}

// frame копирует запись i.
func (s *store) frame(i int) Frame {
	p := s.payload(i)
	out := make([]byte, len(p))
	copy(out, p)
	bits := s.bits(i)
	if s.kind(i) == SameAsFirst {
		bits = s.bits(0)
	}
	return Frame{
		Kind:    s.kind(i),
		Elapsed: elapsedDuration(s.elapsed(i)),
		Bits:    bits,
		Payload: out,
	}
}

// used — сколько байт буфера занято заголовком и записями.
func (s *store) used() int {
	n := s.count()
	if n == 0 {
		return HeaderSize
	}
	return HeaderSize + s.offset(n-1) + s.size(n-1)
}

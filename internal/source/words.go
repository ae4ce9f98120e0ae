package source

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shiwa/remo/internal/irformat"
)

// Слово МК захвата (little-endian): бит 15 — уровень (1 — space), биты 0..14 — длительность в мкс.
// 0x7FFF — «не меньше 32767», передаётся декодеру как 32768.
const (
	wordLevelBit  = 0x8000
	wordDuration  = 0x7FFF
	wordSaturated = wordDuration + 1
)

func decodeWord(lo, hi byte) Sample {
	w := uint16(lo) | uint16(hi)<<8
	smp := Sample{Duration: uint32(w & wordDuration), Level: irformat.Mark}
	if w&wordLevelBit != 0 {
		smp.Level = irformat.Space
	}
	if smp.Duration == wordDuration {
		smp.Duration = wordSaturated
	}
	return smp
}

// EncodeWord упаковывает сэмпл в слово МК; длительности от 32767 насыщаются.
func EncodeWord(smp Sample) [2]byte {
	d := smp.Duration
	if d > wordDuration {
		d = wordDuration
	}
	w := uint16(d)
	if smp.Level == irformat.Space {
		w |= wordLevelBit
	}
	return [2]byte{byte(w), byte(w >> 8)}
}

// wordDecoder собирает слова из потока байт; нечётный хвост ждёт следующего чтения.
type wordDecoder struct {
	odd    byte
	hasOdd bool
	queue  []Sample
}

func (d *wordDecoder) feed(p []byte) {
	if d.hasOdd && len(p) > 0 {
		d.queue = append(d.queue, decodeWord(d.odd, p[0]))
		d.hasOdd = false
		p = p[1:]
	}
	for len(p) >= 2 {
		d.queue = append(d.queue, decodeWord(p[0], p[1]))
		p = p[2:]
	}
	if len(p) == 1 {
		d.odd, d.hasOdd = p[0], true
	}
}

func (d *wordDecoder) next() (Sample, bool) {
	if len(d.queue) == 0 {
		return Sample{}, false
	}
	smp := d.queue[0]
	d.queue = d.queue[1:]
	if len(d.queue) == 0 {
		d.queue = nil
	}
	return smp, true
}

// wordSource — общий код serial и uart: порт отдаёт поток слов МК.
type wordSource struct {
	name  string
	proto string
	port  io.ReadCloser
	// setTimeout задаёт таймаут чтения перед каждым Read; nil — таймаут фиксирован при открытии.
	setTimeout func(time.Duration) error
	dec        wordDecoder
	buf        [256]byte
}

func (w *wordSource) Name() string     { return w.name }
func (w *wordSource) Protocol() string { return w.proto }

func (w *wordSource) ReadSample(timeout time.Duration) (Sample, error) {
	for {
		if smp, ok := w.dec.next(); ok {
			return smp, nil
		}
		if w.setTimeout != nil {
			if err := w.setTimeout(timeout); err != nil {
				return Sample{}, fmt.Errorf("%s: set timeout: %w", w.name, err)
			}
		}
		n, err := w.port.Read(w.buf[:])
		if n == 0 {
			// go.bug.st/serial по таймауту отдаёт (0, nil), tarm/serial — (0, io.EOF)
			if err == nil || errors.Is(err, io.EOF) {
				return Sample{}, ErrIdle
			}
			return Sample{}, fmt.Errorf("%s: read: %w", w.name, err)
		}
		w.dec.feed(w.buf[:n])
	}
}

func (w *wordSource) Close() error {
	if w.port == nil {
		return nil
	}
	return w.port.Close()
}

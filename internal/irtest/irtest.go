// Package irtest синтезирует потоки сэмплов ИК-посылок для тестов декодера и источников.
// Длительности номинальные (кратные T); Scale даёт отклонение в пределах допуска.
package irtest

import (
	"github.com/shiwa/remo/internal/bitpack"
	"github.com/shiwa/remo/internal/irformat"
)

// Sample — одна длительность уровня в мкс.
type Sample struct {
	Duration uint32
	Level    irformat.Level
}

func mark(d uint32) Sample  { return Sample{Duration: d, Level: irformat.Mark} }
func space(d uint32) Sample { return Sample{Duration: d, Level: irformat.Space} }

func descriptor(f irformat.Format) irformat.Descriptor {
	d, ok := irformat.Lookup(f)
	if !ok {
		panic("irtest: unknown format " + f.String())
	}
	return d
}

func units(d irformat.Descriptor, n uint8) uint32 {
	return uint32(n) * d.Unit
}

// Bits разворачивает байты в биты MSB-first.
func Bits(b ...byte) []bool {
	return bitpack.Unpack(b, len(b)*8)
}

// Frame — лидер и биты кадра данных. У NEC/Kadenkyo в конце стоп-импульс (mark 1T).
func Frame(f irformat.Format, bits []bool) []Sample {
	d := descriptor(f)
	h := d.Hints
	t := d.Unit
	out := []Sample{mark(units(d, h.LeaderMark))}
	if d.InfoEdge() == irformat.Space {
		out = append(out, space(units(d, h.LeaderSpace)))
		for _, b := range bits {
			n := h.Symbol0
			if b {
				n = h.Symbol1
			}
			out = append(out, mark(t), space(units(d, n)))
		}
		return append(out, mark(t))
	}
	for _, b := range bits {
		n := h.Symbol0
		if b {
			n = h.Symbol1
		}
		out = append(out, space(t), mark(units(d, n)))
	}
	return out
}

// Repeat — repeat-код: mark лидера, space repeat, стоп-импульс. Sony repeat-кода не имеет.
func Repeat(f irformat.Format) []Sample {
	d := descriptor(f)
	if d.Repeater.IsZero() {
		panic("irtest: no repeat code for " + f.String())
	}
	return []Sample{
		mark(units(d, d.Hints.LeaderMark)),
		space(units(d, d.Hints.Repeater)),
		mark(d.Unit),
	}
}

// Gap — межкадровая пауза длительностью us.
func Gap(us uint32) Sample {
	return space(us)
}

// Stream склеивает куски в один поток.
func Stream(parts ...[]Sample) []Sample {
	var out []Sample
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Scale умножает все длительности на percent/100 (целочисленно, с округлением вниз).
func Scale(samples []Sample, percent uint32) []Sample {
	out := make([]Sample, len(samples))
	for i, s := range samples {
		out[i] = Sample{Duration: s.Duration * percent / 100, Level: s.Level}
	}
	return out
}

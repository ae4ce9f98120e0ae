package remo

import (
	"time"

	"github.com/shiwa/remo/internal/irformat"
)

// Format и Level определены в irformat; здесь псевдонимы для внешних пользователей пакета.
type (
	Format = irformat.Format
	Level  = irformat.Level
)

const (
	FormatUnknown  = irformat.Unknown
	FormatNEC      = irformat.NEC
	FormatKadenkyo = irformat.Kadenkyo
	FormatSony     = irformat.Sony

	Mark  = irformat.Mark
	Space = irformat.Space
)

// Kind — тип кадра. Значения совпадают с полем kind записи в буфере.
type Kind uint8

const (
	Data        Kind = iota // данные
	SameAsFirst             // данные, побайтно совпавшие с первым кадром сессии
	Repeater                // repeat-код (распознан по лидеру, без данных)
)

func (k Kind) String() string {
	switch k {
	case Data:
		return "data"
	case SameAsFirst:
		return "same-as-first"
	case Repeater:
		return "repeater"
	default:
		return "invalid"
	}
}

// Frame — копия одного кадра из буфера сессии.
type Frame struct {
	Kind    Kind
	Elapsed time.Duration // сумма длительностей кадра, с точностью 10 мкс
	Bits    int
	Payload []byte // PackedLen(Bits) байт, MSB-first, хвостовые биты нулевые
	Sealed  bool   // кадр завершён финализатором
}

// Outcome — результат обработки одного сэмпла.
type Outcome uint8

const (
	Continue      Outcome = iota // продолжать чтение
	FrameBoundary                // кадр завершён, ждём следующий лидер
	Failed                       // ошибка, см. error
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case FrameBoundary:
		return "frame-boundary"
	case Failed:
		return "failed"
	default:
		return "invalid"
	}
}

// Package irformat — таблица поддерживаемых ИК-протоколов (NEC, Kadenkyo, Sony)
// и классификатор длительностей с допуском ±20%.
package irformat

// Format — протокол пульта. Значения совпадают с полем format в заголовке сессии.
type Format uint8

const (
	Unknown Format = iota
	NEC
	Kadenkyo
	Sony
)

func (f Format) String() string {
	switch f {
	case Unknown:
		return "unknown"
	case NEC:
		return "nec"
	case Kadenkyo:
		return "kadenkyo"
	case Sony:
		return "sony"
	default:
		return "invalid"
	}
}

// Level — уровень сигнала, к которому относится измеренная длительность.
type Level uint8

const (
	Mark  Level = 0 // несущая есть
	Space Level = 1 // несущей нет
)

func (l Level) String() string {
	if l == Mark {
		return "mark"
	}
	return "space"
}

// Номинальная единица T каждого протокола, мкс.
const (
	UnitNEC      = 562
	UnitKadenkyo = 425
	UnitSony     = 600
)

// Hints — номинальное число единиц T в каждой секции. Только для отчётов и усреднения.
type Hints struct {
	LeaderMark  uint8
	LeaderSpace uint8
	Repeater    uint8
	Symbol0     uint8
	Symbol1     uint8
}

// Descriptor — неизменяемое описание протокола с предвычисленными интервалами.
type Descriptor struct {
	Format      Format
	Unit        uint32 // T, мкс
	LeaderMark  Range
	LeaderSpace Range // нулевой у Sony: второго импульса лидера нет
	Symbol0     Range
	Symbol1     Range
	Repeater    Range // нулевой у Sony: repeat-кода нет
	Hints       Hints
}

func newDescriptor(f Format, unit uint32, h Hints) Descriptor {
	section := func(n uint8) Range {
		if n == 0 {
			return Range{}
		}
		return Margin(uint32(n) * unit)
	}
	return Descriptor{
		Format:      f,
		Unit:        unit,
		LeaderMark:  section(h.LeaderMark),
		LeaderSpace: section(h.LeaderSpace),
		Symbol0:     section(h.Symbol0),
		Symbol1:     section(h.Symbol1),
		Repeater:    section(h.Repeater),
		Hints:       h,
	}
}

// table в порядке приоритета при совпадении: NEC, Kadenkyo, Sony.
var table = [...]Descriptor{
	newDescriptor(NEC, UnitNEC, Hints{LeaderMark: 16, LeaderSpace: 8, Repeater: 4, Symbol0: 1, Symbol1: 3}),
	newDescriptor(Kadenkyo, UnitKadenkyo, Hints{LeaderMark: 8, LeaderSpace: 4, Repeater: 8, Symbol0: 1, Symbol1: 3}),
	newDescriptor(Sony, UnitSony, Hints{LeaderMark: 4, Symbol0: 1, Symbol1: 2}),
}

// Table возвращает копию таблицы форматов в порядке приоритета.
func Table() []Descriptor {
	out := make([]Descriptor, len(table))
	copy(out, table[:])
	return out
}

// Lookup возвращает описание формата; Unknown и неизвестные значения — (zero, false).
func Lookup(f Format) (Descriptor, bool) {
	for _, d := range table {
		if d.Format == f {
			return d, true
		}
	}
	return Descriptor{}, false
}

// InfoEdge — уровень, длительность которого кодирует бит: space у NEC/Kadenkyo, mark у Sony.
// Второй уровень — синхроимпульс фиксированной ширины.
func (d Descriptor) InfoEdge() Level {
	if d.LeaderSpace.IsZero() {
		return Mark
	}
	return Space
}

// MaxSymbol — верхняя граница самого длинного символа данных.
func (d Descriptor) MaxSymbol() uint32 {
	if d.Symbol1.Max > d.Symbol0.Max {
		return d.Symbol1.Max
	}
	return d.Symbol0.Max
}

// Match сравнивает пару лидера (mark, space) со всеми форматами по порядку таблицы.
// Первый совпавший выигрывает; repeat=true, если space попал в интервал repeat-кода.
func Match(mark, space uint32) (d Descriptor, repeat bool, ok bool) {
	for _, d := range table {
		if !d.LeaderMark.Contains(mark) {
			continue
		}
		if d.LeaderSpace.IsZero() {
			return d, false, true
		}
		if d.LeaderSpace.Contains(space) {
			return d, false, true
		}
		if d.Repeater.Contains(space) {
			return d, true, true
		}
	}
	return Descriptor{}, false, false
}

package irformat

// Допуск на все сравнения длительностей: ±20% от номинала, границы включительно.
const (
	marginLowNum  = 8  // 0.8
	marginHighNum = 12 // 1.2
	marginDen     = 10
)

// Range — интервал допустимых длительностей [Min, Max] в мкс. Нулевой Range означает «не используется».
type Range struct {
	Min uint32
	Max uint32
}

// Margin возвращает интервал приёма для номинала: [ceil(n*0.8), floor(n*1.2)].
// Для целых длительностей это ровно nominal*0.8 <= v <= nominal*1.2.
func Margin(nominal uint32) Range {
	n := uint64(nominal)
	return Range{
		Min: uint32((n*marginLowNum + marginDen - 1) / marginDen),
		Max: uint32(n * marginHighNum / marginDen),
	}
}

// InRange проверяет value на попадание в ±20% от nominal без предвычисленного Range.
func InRange(value, nominal uint32) bool {
	v, n := uint64(value)*marginDen, uint64(nominal)
	return v >= n*marginLowNum && v <= n*marginHighNum
}

// IsZero — интервал не задан (секция отсутствует в формате).
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// Contains проверяет Min <= v <= Max. Нулевой Range ничего не содержит.
func (r Range) Contains(v uint32) bool {
	if r.IsZero() {
		return false
	}
	return r.Min <= v && v <= r.Max
}

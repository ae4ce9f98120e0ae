package remo

import "github.com/shiwa/remo/internal/bitpack"

// finalize запечатывает последний кадр. Кадр с данными, побайтно равный первому кадру сессии,
// помечается SameAsFirst, и его payload освобождается под следующую запись.
// Первый кадр не переклассифицируется; сравнение всегда идёт с кадром 0.
func (s *Session) finalize() {
	n := s.st.count()
	if n == 0 {
		return
	}
	i := n - 1
	if i > 0 && s.sameAsFirst(i) {
		s.st.setKind(i, SameAsFirst)
	}
	s.sealed = n
}

func (s *Session) sameAsFirst(i int) bool {
	if s.st.kind(0) != Data || s.st.kind(i) != Data {
		return false
	}
	return bitpack.Equal(s.st.payload(0), s.st.bits(0), s.st.payload(i), s.st.bits(i))
}

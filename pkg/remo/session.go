// Package remo — инкрементальный декодер посылок ИК-пультов (NEC, Kadenkyo, Sony).
//
// Сессия получает сэмплы (длительность, уровень) по одному, распознаёт лидер и формат,
// собирает биты кадров и хранит кадры в буфере, которым владеет вызывающая сторона.
// Сессия не потокобезопасна: сэмплы подаются последовательно из одного источника.
package remo

import (
	"time"

	"github.com/shiwa/remo/internal/irformat"
)

// MaxDuration — наибольшая длительность сэмпла, мкс (15 бит без знака).
const MaxDuration = 1<<15 - 1

// elapsedUnit — масштаб поля elapsed и averageSeparator в заголовке.
const elapsedUnit = 10 * time.Microsecond

type state uint8

const (
	awaitingLeader state = iota
	assemblingFrame
)

// Session — контекст одной сессии декодирования. Буфер принадлежит вызывающей стороне,
// сессия хранит только ссылку на него.
type Session struct {
	st    store
	state state
	desc  irformat.Descriptor

	leader  [2]uint32 // mark, space последнего лидера
	pending bool      // leader[0] измерен, ждём пару

	frameUs  uint64 // накопленная длительность текущего кадра
	longSync uint32 // последний длинный синхроимпульс (межкадровая пауза у Sony)
	sealed   int    // число кадров, прошедших финализатор

	syncSum, syncN uint64 // синхроимпульсы для averageT
	gapSum, gapN   uint64 // межкадровые паузы для averageSeparator

	err error
}

// NewSession создаёт сессию поверх buf.
func NewSession(buf []byte) (*Session, error) {
	s := &Session{}
	if err := s.Init(buf); err != nil {
		return nil, err
	}
	return s, nil
}

// Init обнуляет buf и состояние сессии. Ёмкость хранилища — len(buf);
// буфер меньше HeaderSize — ErrBufferTooSmall.
func (s *Session) Init(buf []byte) error {
	*s = Session{}
	if err := s.st.reset(buf); err != nil {
		s.err = &SessionError{Kind: ErrBufferTooSmall, Frame: -1}
		return s.err
	}
	return nil
}

// SubmitSample обрабатывает один сэмпл: durationUs — длительность уровня level в мкс.
// После ошибки сессия возвращает ту же ошибку до повторного Init.
func (s *Session) SubmitSample(durationUs uint32, level Level) (Outcome, error) {
	if s.err != nil {
		return Failed, s.err
	}
	if !s.st.ready() {
		s.err = &SessionError{Kind: ErrBufferTooSmall, Duration: durationUs, Level: level, Frame: -1}
		return Failed, s.err
	}
	if s.state == awaitingLeader {
		return s.parseLeader(durationUs, level)
	}
	return s.parseData(durationUs, level)
}

func (s *Session) parseLeader(d uint32, level Level) (Outcome, error) {
	if d > MaxDuration {
		return s.fail(ErrTimingOverflow, d, level)
	}
	if !s.pending {
		if level != Mark {
			// пауза до лидера: ждём mark
			return Continue, nil
		}
		s.leader[0] = d
		s.pending = true
		return Continue, nil
	}
	s.leader[1] = d
	s.pending = false

	desc, repeat, ok := irformat.Match(s.leader[0], s.leader[1])
	if !ok {
		return s.fail(ErrUnrecognizedLeader, d, level)
	}
	if f := s.st.format(); f != FormatUnknown && f != desc.Format {
		return s.fail(ErrFormatMismatch, d, level)
	}
	kind := Data
	if repeat {
		kind = Repeater
	}
	if err := s.st.appendFrame(kind); err != nil {
		return s.fail(ErrBufferOverflow, d, level)
	}
	s.st.setFormat(desc.Format)
	s.desc = desc
	s.frameUs = uint64(s.leader[0]) + uint64(s.leader[1])
	if desc.LeaderSpace.IsZero() && desc.Symbol0.Contains(d) {
		// у Sony вторая половина пары — уже синхроимпульс первого бита
		s.addSync(d)
	}
	s.updateElapsed()
	s.state = assemblingFrame
	return Continue, nil
}

func (s *Session) parseData(d uint32, level Level) (Outcome, error) {
	desc := s.desc
	atByte := s.st.bits(s.st.count()-1)%8 == 0

	if d < desc.Symbol0.Min {
		return s.fail(ErrTimingTooShort, d, level)
	}

	if level != desc.InfoEdge() {
		// синхроимпульс: проверяется только нижняя граница symbol0
		if level == Mark && d > desc.MaxSymbol() && desc.LeaderMark.Contains(d) {
			// mark лидера следующего кадра без отдельной паузы перед ним
			if !atByte {
				return s.fail(ErrUnexpectedTiming, d, level)
			}
			return s.endFrame(d, true), nil
		}
		if d > MaxDuration {
			return s.fail(ErrTimingOverflow, d, level)
		}
		if d > desc.MaxSymbol() {
			// пауза перед следующим лидером в длительность кадра не входит
			s.longSync = d
			return Continue, nil
		}
		if desc.Symbol0.Contains(d) {
			s.addSync(d)
		}
		s.frameUs += uint64(d)
		s.updateElapsed()
		return Continue, nil
	}

	repeater := s.st.kind(s.st.count()-1) == Repeater
	switch {
	case repeater && d <= desc.MaxSymbol():
		// у repeat-кода нет бит: запись без payload
		return s.fail(ErrUnexpectedTiming, d, level)
	case desc.Symbol0.Contains(d):
		return s.appendBit(false, d, level)
	case desc.Symbol1.Contains(d):
		return s.appendBit(true, d, level)
	case d > desc.MaxSymbol() && atByte:
		if level == Mark {
			// Sony: mark лидера следующего кадра приходит на информационном фронте
			if desc.LeaderMark.Contains(d) {
				return s.endFrame(d, true), nil
			}
			if d > MaxDuration {
				return s.fail(ErrTimingOverflow, d, level)
			}
			return s.fail(ErrUnexpectedTiming, d, level)
		}
		// NEC/Kadenkyo: пауза после завершающего mark не короче mark лидера — конец кадра
		if d >= desc.LeaderMark.Min {
			return s.endFrame(d, false), nil
		}
		return s.fail(ErrUnexpectedTiming, d, level)
	default:
		return s.fail(ErrUnexpectedTiming, d, level)
	}
}

func (s *Session) appendBit(v bool, d uint32, level Level) (Outcome, error) {
	if err := s.st.writeBit(v); err != nil {
		return s.fail(ErrBufferOverflow, d, level)
	}
	s.frameUs += uint64(d)
	s.updateElapsed()
	return Continue, nil
}

// endFrame запечатывает текущий кадр и возвращает автомат к поиску лидера.
// carry — сэмпл d уже является mark следующего лидера.
func (s *Session) endFrame(d uint32, carry bool) Outcome {
	s.finalize()
	if carry {
		s.leader[0] = d
		s.pending = true
		if s.longSync > 0 {
			s.addGap(s.longSync)
		}
	} else {
		s.addGap(d)
	}
	s.longSync = 0
	s.state = awaitingLeader
	return FrameBoundary
}

// Finish завершает сессию по внешней политике (таймаут тишины, достаточно кадров):
// запечатывает кадр в сборке. FrameBoundary — если был запечатан кадр.
func (s *Session) Finish() (Outcome, error) {
	if s.err != nil {
		return Failed, s.err
	}
	s.pending = false
	if s.state != assemblingFrame {
		return Continue, nil
	}
	s.finalize()
	s.longSync = 0
	s.state = awaitingLeader
	return FrameBoundary, nil
}

func (s *Session) fail(kind ErrorKind, d uint32, level Level) (Outcome, error) {
	e := &SessionError{Kind: kind, Duration: d, Level: level, Frame: -1}
	if n := s.FrameCount(); n > 0 {
		e.Frame = n - 1
		e.Bit = s.st.bits(n - 1)
	}
	s.err = e
	return Failed, e
}

func (s *Session) updateElapsed() {
	units := s.frameUs / uint64(elapsedUnit/time.Microsecond)
	if units > 0xFFFF {
		units = 0xFFFF
	}
	s.st.setElapsed(s.st.count()-1, uint16(units))
}

func (s *Session) addSync(d uint32) {
	s.syncSum += uint64(d)
	s.syncN++
	s.st.setAverageT(uint16(s.syncSum / s.syncN))
}

func (s *Session) addGap(d uint32) {
	s.gapSum += uint64(d)
	s.gapN++
	units := s.gapSum / s.gapN / uint64(elapsedUnit/time.Microsecond)
	if units > 0xFFFF {
		units = 0xFFFF
	}
	s.st.setAverageSeparator(uint16(units))
}

// Err возвращает терминальную ошибку сессии или nil.
func (s *Session) Err() error {
	return s.err
}

// Format возвращает формат сессии; FormatUnknown до первого распознанного лидера.
func (s *Session) Format() Format {
	if !s.st.ready() {
		return FormatUnknown
	}
	return s.st.format()
}

// FrameCount возвращает число кадров, включая кадр в сборке.
func (s *Session) FrameCount() int {
	if !s.st.ready() {
		return 0
	}
	return s.st.count()
}

// FrameAt возвращает копию кадра i. Кадр в сборке тоже доступен: его Bits и Payload согласованы.
func (s *Session) FrameAt(i int) (Frame, bool) {
	if i < 0 || i >= s.FrameCount() {
		return Frame{}, false
	}
	f := s.st.frame(i)
	f.Sealed = i < s.sealed
	return f, true
}

// Frames возвращает копии всех кадров.
func (s *Session) Frames() []Frame {
	n := s.FrameCount()
	out := make([]Frame, 0, n)
	for i := 0; i < n; i++ {
		f, _ := s.FrameAt(i)
		out = append(out, f)
	}
	return out
}

// PendingLeader возвращает mark лидера, измеренный без пары: он уже принадлежит
// следующему кадру.
func (s *Session) PendingLeader() (uint32, bool) {
	if s.state != awaitingLeader || !s.pending {
		return 0, false
	}
	return s.leader[0], true
}

// AverageT — средняя ширина синхроимпульса, мкс (оценка единицы T).
func (s *Session) AverageT() time.Duration {
	if !s.st.ready() {
		return 0
	}
	return time.Duration(s.st.averageT()) * time.Microsecond
}

// AverageSeparator — средняя межкадровая пауза, с точностью 10 мкс.
func (s *Session) AverageSeparator() time.Duration {
	if !s.st.ready() {
		return 0
	}
	return elapsedDuration(s.st.averageSeparator())
}

// BytesUsed — сколько байт буфера занято заголовком и кадрами.
func (s *Session) BytesUsed() int {
	if !s.st.ready() {
		return 0
	}
	return s.st.used()
}

func elapsedDuration(units uint16) time.Duration {
	return time.Duration(units) * elapsedUnit
}

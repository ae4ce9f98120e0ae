package remo

import "fmt"

// ErrorKind — класс ошибки сессии. Все ошибки терминальны: после них сессия
// не продвигается до повторного Init.
type ErrorKind uint8

const (
	ErrTimingOverflow     ErrorKind = iota + 1 // длительность не помещается в 15 бит
	ErrUnrecognizedLeader                      // лидер не подошёл ни к одному формату
	ErrFormatMismatch                          // лидер другого формата, чем зафиксирован в сессии
	ErrTimingTooShort                          // импульс короче нижней границы symbol0
	ErrUnexpectedTiming                        // длительность вне грамматики символов формата
	ErrBufferOverflow                          // кадр или хранилище не помещается в буфер
	ErrBufferTooSmall                          // буфер меньше заголовка сессии
)

func (k ErrorKind) Error() string {
	switch k {
	case ErrTimingOverflow:
		return "timing overflow"
	case ErrUnrecognizedLeader:
		return "unrecognized leader"
	case ErrFormatMismatch:
		return "format mismatch"
	case ErrTimingTooShort:
		return "timing too short"
	case ErrUnexpectedTiming:
		return "unexpected timing"
	case ErrBufferOverflow:
		return "buffer overflow"
	case ErrBufferTooSmall:
		return "buffer too small"
	default:
		return fmt.Sprintf("error kind %d", uint8(k))
	}
}

// SessionError — ошибка с контекстом отвергнутого сэмпла. errors.Is(err, ErrXxx) сравнивает по Kind.
type SessionError struct {
	Kind     ErrorKind
	Duration uint32 // мкс
	Level    Level
	Frame    int // индекс текущего кадра, -1 — кадров ещё нет
	Bit      int // позиция бита в текущем кадре
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("remo: %v: %dus %v (frame %d, bit %d)", e.Kind, e.Duration, e.Level, e.Frame, e.Bit)
}

func (e *SessionError) Unwrap() error {
	return e.Kind
}

// Package source — источники сэмплов для декодера: МК захвата по последовательному порту,
// файл LIRC mode2 и линия GPIO с демодулирующим приёмником.
package source

import (
	"errors"
	"time"

	"github.com/shiwa/remo/internal/irformat"
)

// ErrIdle — за отведённое время не пришло ни одного сэмпла (линия в покое).
var ErrIdle = errors.New("source: idle")

// Sample — длительность уровня в мкс. Значения больше 32767 передаются как есть,
// их отвергает декодер.
type Sample struct {
	Duration uint32
	Level    irformat.Level
}

// SampleSource — источник сэмплов (аналог TimeSource в clock sync).
type SampleSource interface {
	// Name возвращает имя источника для логов
	Name() string
	// Protocol возвращает протокол: serial, uart, mode2, gpio
	Protocol() string
	// ReadSample ждёт следующий сэмпл не дольше timeout; по истечении — ErrIdle.
	// io.EOF — источник исчерпан (конец файла).
	ReadSample(timeout time.Duration) (Sample, error)
	// Close освобождает ресурсы
	Close() error
}

func clampMicros(d time.Duration) uint32 {
	us := d / time.Microsecond
	if us < 0 {
		return 0
	}
	if us > 1<<32-1 {
		return 1<<32 - 1
	}
	return uint32(us)
}

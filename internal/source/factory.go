package source

import (
	"fmt"
	"time"

	"github.com/shiwa/remo/pkg/config"
)

// NewFromConfig создаёт SampleSource по секции source. idle — таймаут чтения для uart,
// у которого он задаётся при открытии порта.
func NewFromConfig(c config.SourceConfig, idle time.Duration) (SampleSource, error) {
	switch c.Protocol {
	case "serial":
		return checked(NewSerial(c.Device, c.Baud))
	case "uart":
		return checked(NewUART(c.Device, c.Baud, idle))
	case "mode2":
		if c.File == "" {
			return nil, fmt.Errorf("mode2: file required")
		}
		return checked(OpenMode2(c.File))
	case "gpio":
		return checked(NewGPIO(c.Pin, c.IsActiveLow()))
	default:
		return nil, fmt.Errorf("unknown protocol: %s", c.Protocol)
	}
}

// checked не даёт типизированному nil попасть в интерфейс.
func checked[S SampleSource](s S, err error) (SampleSource, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

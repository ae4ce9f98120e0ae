package source

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// UART — МК захвата через tarm/serial (встроенные UART одноплатников).
// Таймаут чтения фиксируется при открытии, на POSIX с шагом 100 мс.
type UART struct {
	wordSource
}

// NewUART открывает порт device на скорости baud с таймаутом чтения readTimeout.
func NewUART(device string, baud int, readTimeout time.Duration) (*UART, error) {
	c := &serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: readTimeout,
	}
	p, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("uart open %s: %w", device, err)
	}
	if err := p.Flush(); err != nil {
		p.Close()
		return nil, fmt.Errorf("uart flush %s: %w", device, err)
	}
	return &UART{wordSource{
		name:  "uart:" + device,
		proto: "uart",
		port:  p,
	}}, nil
}

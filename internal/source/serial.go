package source

import (
	"fmt"

	"go.bug.st/serial"
)

// Serial — МК захвата на USB-CDC/UART через go.bug.st/serial. Таймаут задаётся на каждое чтение.
type Serial struct {
	wordSource
}

// NewSerial открывает порт device 8N1 на скорости baud.
func NewSerial(device string, baud int) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", device, err)
	}
	if err := p.ResetInputBuffer(); err != nil {
		p.Close()
		return nil, fmt.Errorf("serial reset %s: %w", device, err)
	}
	return &Serial{wordSource{
		name:       "serial:" + device,
		proto:      "serial",
		port:       p,
		setTimeout: p.SetReadTimeout,
	}}, nil
}

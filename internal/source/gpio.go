package source

import (
	"fmt"
	"time"

	"github.com/shiwa/remo/internal/irformat"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// edgePin — часть gpio.PinIO, нужная для захвата фронтов.
type edgePin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
	WaitForEdge(timeout time.Duration) bool
	Halt() error
}

// GPIO измеряет интервалы между фронтами на выходе демодулирующего приёмника.
// Длительность относится к уровню до фронта. Первый фронт после открытия или покоя
// только запускает отсчёт: пауза покоя декодеру не нужна.
type GPIO struct {
	name      string
	pin       edgePin
	activeLow bool
	now       func() int64 // монотонное время, нс
	armed     bool
	last      int64
}

// NewGPIO инициализирует драйверы periph и настраивает линию pin на вход по обоим фронтам.
func NewGPIO(pin string, activeLow bool) (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: host init: %w", err)
	}
	p := gpioreg.ByName(pin)
	if p == nil {
		return nil, fmt.Errorf("gpio: pin %q not found", pin)
	}
	return newGPIO("gpio:"+p.Name(), p, activeLow, monotonicNow)
}

func newGPIO(name string, p edgePin, activeLow bool, now func() int64) (*GPIO, error) {
	pull := gpio.PullUp
	if !activeLow {
		pull = gpio.PullDown
	}
	if err := p.In(pull, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("%s: configure input: %w", name, err)
	}
	return &GPIO{name: name, pin: p, activeLow: activeLow, now: now}, nil
}

func (g *GPIO) Name() string     { return g.name }
func (g *GPIO) Protocol() string { return "gpio" }

func (g *GPIO) ReadSample(timeout time.Duration) (Sample, error) {
	for {
		if !g.pin.WaitForEdge(timeout) {
			g.armed = false
			return Sample{}, ErrIdle
		}
		t := g.now()
		after := g.levelOf(g.pin.Read())
		if !g.armed {
			g.armed, g.last = true, t
			continue
		}
		d := time.Duration(t - g.last)
		g.last = t
		return Sample{Duration: clampMicros(d), Level: opposite(after)}, nil
	}
}

// levelOf переводит физический уровень линии в mark/space.
func (g *GPIO) levelOf(l gpio.Level) irformat.Level {
	if (l == gpio.Low) == g.activeLow {
		return irformat.Mark
	}
	return irformat.Space
}

func opposite(l irformat.Level) irformat.Level {
	if l == irformat.Mark {
		return irformat.Space
	}
	return irformat.Mark
}

func (g *GPIO) Close() error {
	return g.pin.Halt()
}

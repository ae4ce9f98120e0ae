package capture

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shiwa/remo/internal/irformat"
	"github.com/shiwa/remo/internal/irtest"
	"github.com/shiwa/remo/internal/source"
	"github.com/shiwa/remo/pkg/config"
	"github.com/shiwa/remo/pkg/remo"
)

// scriptSource отдаёт сэмплы по списку; элемент с err — ошибка вместо сэмпла.
type scriptSource struct {
	items  []item
	end    error
	closed bool
}

type item struct {
	smp source.Sample
	err error
}

func (s *scriptSource) Name() string     { return "script" }
func (s *scriptSource) Protocol() string { return "test" }
func (s *scriptSource) Close() error {
	s.closed = true
	return nil
}

func (s *scriptSource) ReadSample(time.Duration) (source.Sample, error) {
	if len(s.items) == 0 {
		if s.end != nil {
			return source.Sample{}, s.end
		}
		return source.Sample{}, io.EOF
	}
	it := s.items[0]
	s.items = s.items[1:]
	return it.smp, it.err
}

func (s *scriptSource) add(samples ...irtest.Sample) *scriptSource {
	for _, smp := range samples {
		s.items = append(s.items, item{smp: source.Sample{Duration: smp.Duration, Level: smp.Level}})
	}
	return s
}

func (s *scriptSource) idle() *scriptSource {
	s.items = append(s.items, item{err: source.ErrIdle})
	return s
}

func run(t *testing.T, src source.SampleSource, opt Options) []Snapshot {
	t.Helper()
	var got []Snapshot
	if err := Run(context.Background(), src, opt, func(s Snapshot) { got = append(got, s) }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return got
}

var (
	gap     = irtest.Gap(40000)
	necCode = irtest.Bits(0x04, 0xFB, 0x02, 0xFD)
)

func TestRunIdleEndsSession(t *testing.T) {
	src := &scriptSource{}
	src.add(irtest.Gap(30000)) // покой до первого mark отбрасывается
	src.add(irtest.Frame(irformat.NEC, necCode)...).add(gap)
	src.add(irtest.Repeat(irformat.NEC)...).add(gap)
	src.idle()
	src.add(irtest.Frame(irformat.Kadenkyo, irtest.Bits(0x02, 0x20))...)

	h := NewHistory(4)
	got := run(t, src, Options{BufferSize: 64, MaxFrames: 10, Idle: 100 * time.Millisecond, History: h})
	if len(got) != 2 {
		t.Fatalf("сессий = %d, want 2", len(got))
	}
	first := got[0]
	if first.Err != nil || first.Format != remo.FormatNEC || len(first.Frames) != 2 {
		t.Fatalf("сессия 1 = %+v", first)
	}
	if first.Frames[0].Kind != remo.Data || first.Frames[1].Kind != remo.Repeater {
		t.Errorf("виды кадров: %v %v", first.Frames[0].Kind, first.Frames[1].Kind)
	}
	if !bytes.Equal(first.Frames[0].Payload, []byte{0x04, 0xFB, 0x02, 0xFD}) {
		t.Errorf("payload = %x", first.Frames[0].Payload)
	}
	// вторая сессия закрыта концом источника: кадр запечатан через Finish
	second := got[1]
	if second.Format != remo.FormatKadenkyo || len(second.Frames) != 1 || !second.Frames[0].Sealed {
		t.Errorf("сессия 2 = %+v", second)
	}
	if second.Seq != 2 || second.Source != "script" {
		t.Errorf("seq=%d source=%q", second.Seq, second.Source)
	}
	if h.Total() != 2 {
		t.Errorf("History.Total = %d", h.Total())
	}
}

func TestRunMaxFrames(t *testing.T) {
	frame := irtest.Frame(irformat.NEC, necCode)
	src := &scriptSource{}
	for i := 0; i < 3; i++ {
		src.add(frame...).add(gap)
	}
	got := run(t, src, Options{BufferSize: 64, MaxFrames: 2, Idle: time.Second})
	if len(got) != 2 {
		t.Fatalf("сессий = %d, want 2", len(got))
	}
	if len(got[0].Frames) != 2 || got[0].Frames[1].Kind != remo.SameAsFirst {
		t.Errorf("сессия 1 = %+v", got[0].Frames)
	}
	if len(got[1].Frames) != 1 || got[1].Frames[0].Kind != remo.Data {
		t.Errorf("сессия 2 = %+v", got[1].Frames)
	}
}

func TestRunMaxFramesCarriesLeader(t *testing.T) {
	frame := irtest.Frame(irformat.Sony, irtest.Bits(0x5A))
	src := &scriptSource{}
	src.add(frame...).add(irtest.Gap(20000)).add(frame...).add(irtest.Gap(20000)).add(frame...)
	got := run(t, src, Options{BufferSize: 64, MaxFrames: 1, Idle: time.Second})
	if len(got) != 3 {
		t.Fatalf("сессий = %d, want 3", len(got))
	}
	for i, s := range got {
		if s.Err != nil || len(s.Frames) != 1 || !bytes.Equal(s.Frames[0].Payload, []byte{0x5A}) {
			t.Errorf("сессия %d = %+v", i, s)
		}
	}
}

func TestRunDecodeErrorResyncs(t *testing.T) {
	src := &scriptSource{}
	src.add(irtest.Sample{Duration: 5000, Level: irformat.Mark}, irtest.Sample{Duration: 5000, Level: irformat.Space})
	// остаток испорченной посылки до тишины отбрасывается
	src.add(irtest.Frame(irformat.NEC, necCode)[2:]...)
	src.idle()
	src.add(irtest.Frame(irformat.NEC, necCode)...).add(gap)

	got := run(t, src, Options{BufferSize: 64, MaxFrames: 10, Idle: time.Second})
	if len(got) != 2 {
		t.Fatalf("сессий = %d, want 2", len(got))
	}
	if !errors.Is(got[0].Err, remo.ErrUnrecognizedLeader) {
		t.Errorf("сессия 1: ошибка %v", got[0].Err)
	}
	if got[1].Err != nil || len(got[1].Frames) != 1 {
		t.Errorf("сессия 2 = %+v", got[1])
	}
}

func TestRunSourceError(t *testing.T) {
	boom := errors.New("boom")
	src := &scriptSource{end: boom}
	err := Run(context.Background(), src, Options{BufferSize: 64}, nil)
	if !errors.Is(err, boom) {
		t.Errorf("ожидали обёрнутую ошибку источника, получили %v", err)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &scriptSource{}
	src.add(irtest.Frame(irformat.NEC, necCode)...)
	err := Run(ctx, src, Options{BufferSize: 64}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ожидали context.Canceled, получили %v", err)
	}
}

func TestRunBufferTooSmall(t *testing.T) {
	err := Run(context.Background(), &scriptSource{}, Options{BufferSize: 8}, nil)
	if !errors.Is(err, remo.ErrBufferTooSmall) {
		t.Errorf("ожидали ErrBufferTooSmall, получили %v", err)
	}
}

func TestRunRealtime(t *testing.T) {
	defer func(f func(int) (func() error, error)) { setRealtime = f }(setRealtime)

	var gotPrio, restored int
	setRealtime = func(prio int) (func() error, error) {
		gotPrio = prio
		return func() error {
			restored++
			return nil
		}, nil
	}
	src := (&scriptSource{}).add(irtest.Frame(irformat.NEC, necCode)...).add(gap)
	got := run(t, src, Options{BufferSize: 64, Realtime: 40})
	if gotPrio != 40 || restored != 1 {
		t.Errorf("приоритет %d, restore вызван %d раз", gotPrio, restored)
	}
	if len(got) != 1 {
		t.Errorf("сессий %d, want 1", len(got))
	}

	// без прав на SCHED_FIFO приём продолжается с обычным приоритетом
	setRealtime = func(int) (func() error, error) { return nil, errors.New("operation not permitted") }
	src = (&scriptSource{}).add(irtest.Frame(irformat.NEC, necCode)...).add(gap)
	if got := run(t, src, Options{BufferSize: 64, Realtime: 40}); len(got) != 1 {
		t.Errorf("сессий %d, want 1", len(got))
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opt, err := OptionsFromConfig(config.CaptureConfig{BufferSize: 128, MaxFrames: 4, IdleTimeout: "90ms", History: 8, RealtimePriority: 30})
	if err != nil {
		t.Fatal(err)
	}
	if opt.BufferSize != 128 || opt.MaxFrames != 4 || opt.Idle != 90*time.Millisecond || opt.Realtime != 30 || opt.History == nil {
		t.Errorf("Options = %+v", opt)
	}
}

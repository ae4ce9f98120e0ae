// Package capture запускает цикл приёма: сэмплы источника идут в сессию декодера,
// завершённые сессии отдаются обработчику и сохраняются в History.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/shiwa/remo/internal/logger"
	"github.com/shiwa/remo/internal/source"
	"github.com/shiwa/remo/pkg/config"
	"github.com/shiwa/remo/pkg/remo"
)

// Snapshot — копия завершённой сессии.
type Snapshot struct {
	Seq              int
	Source           string
	Started          time.Time
	Ended            time.Time
	Format           remo.Format
	AverageT         time.Duration
	AverageSeparator time.Duration
	BytesUsed        int
	Frames           []remo.Frame
	Err              error // ошибка, прервавшая сессию; nil — сессия завершена по политике
}

// Handler получает каждую завершённую сессию. Вызывается из цикла Run.
type Handler func(Snapshot)

// Options — политика окончания сессии.
type Options struct {
	BufferSize int           // размер буфера сессии, байт
	MaxFrames  int           // после стольких кадров сессия завершается
	Idle       time.Duration // тишина дольше Idle завершает сессию
	History    *History      // может быть nil
	Realtime   int           // приоритет SCHED_FIFO потока приёма, 0 — не менять
}

// setRealtime подменяется в тестах.
var setRealtime = source.Realtime

// OptionsFromConfig переводит секцию capture в Options.
func OptionsFromConfig(c config.CaptureConfig) (Options, error) {
	idle, err := c.Idle()
	if err != nil {
		return Options{}, err
	}
	return Options{
		BufferSize: c.BufferSize,
		MaxFrames:  c.MaxFrames,
		Idle:       idle,
		History:    NewHistory(c.History),
		Realtime:   c.RealtimePriority,
	}, nil
}

// Run читает src до отмены ctx или конца источника (io.EOF — возвращается nil).
// Каждая завершённая сессия (тишина, MaxFrames, ошибка декодера) отдаётся onSession.
// Ошибка декодера сессию сбрасывает, цикл продолжается.
func Run(ctx context.Context, src source.SampleSource, opt Options, onSession Handler) error {
	if opt.MaxFrames <= 0 || opt.MaxFrames > remo.MaxFrames {
		opt.MaxFrames = remo.MaxFrames
	}
	if opt.Idle <= 0 {
		opt.Idle = 150 * time.Millisecond
	}
	buf := make([]byte, opt.BufferSize)
	s, err := remo.NewSession(buf)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	r := &runner{src: src, opt: opt, buf: buf, s: s, onSession: onSession}

	if opt.Realtime > 0 {
		// приоритет действует на поток, поэтому цикл чтения к нему привязан
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		restore, err := setRealtime(opt.Realtime)
		if err != nil {
			logger.Error("capture: %v", err)
		} else {
			defer func() {
				if err := restore(); err != nil {
					logger.Error("capture: %v", err)
				}
			}()
		}
	}

	logger.Info("capture: %s buffer=%d max_frames=%d idle=%v", src.Name(), opt.BufferSize, opt.MaxFrames, opt.Idle)
	for {
		if err := ctx.Err(); err != nil {
			r.flush(nil)
			return err
		}
		smp, err := src.ReadSample(opt.Idle)
		switch {
		case errors.Is(err, source.ErrIdle):
			r.flush(nil)
			r.resync = false
			continue
		case errors.Is(err, io.EOF):
			r.flush(nil)
			return nil
		case err != nil:
			r.flush(nil)
			return fmt.Errorf("capture %s: %w", src.Name(), err)
		}
		r.submit(smp)
	}
}

type runner struct {
	src       source.SampleSource
	opt       Options
	buf       []byte
	s         *remo.Session
	onSession Handler

	armed   bool // в сессии уже был mark
	resync  bool // после ошибки ждём тишины, остаток посылки отбрасывается
	started time.Time
	seq     int
}

func (r *runner) submit(smp source.Sample) {
	if r.resync {
		return
	}
	if !r.armed {
		// пауза покоя перед первым mark сессии декодеру не подаётся
		if smp.Level != remo.Mark {
			return
		}
		r.armed = true
		r.started = time.Now()
	}
	out, err := r.s.SubmitSample(smp.Duration, smp.Level)
	if err != nil {
		logger.Debug("capture: %s: %v", r.src.Name(), err)
		r.emit(err)
		return
	}
	if out != remo.FrameBoundary {
		return
	}
	n := r.s.FrameCount()
	if f, ok := r.s.FrameAt(n - 1); ok {
		logger.Debug("capture: frame %d %v %s %d bits %x", n-1, r.s.Format(), f.Kind, f.Bits, f.Payload)
	}
	if n >= r.opt.MaxFrames {
		carried, ok := r.s.PendingLeader()
		r.emit(nil)
		if ok {
			// mark лидера уже принадлежит следующей посылке
			r.submit(source.Sample{Duration: carried, Level: remo.Mark})
		}
	}
}

// flush завершает сессию, если в ней есть кадры; иначе только сбрасывает её.
func (r *runner) flush(err error) {
	if _, ferr := r.s.Finish(); ferr != nil {
		err = ferr
	}
	if r.s.FrameCount() == 0 && err == nil {
		r.reset()
		return
	}
	r.emit(err)
}

func (r *runner) emit(err error) {
	r.seq++
	snap := Snapshot{
		Seq:              r.seq,
		Source:           r.src.Name(),
		Started:          r.started,
		Ended:            time.Now(),
		Format:           r.s.Format(),
		AverageT:         r.s.AverageT(),
		AverageSeparator: r.s.AverageSeparator(),
		BytesUsed:        r.s.BytesUsed(),
		Frames:           r.s.Frames(),
		Err:              err,
	}
	if r.opt.History != nil {
		r.opt.History.Add(snap)
	}
	if r.onSession != nil {
		r.onSession(snap)
	}
	r.reset()
	r.resync = err != nil
}

func (r *runner) reset() {
	// буфер не меньше заголовка, проверено в NewSession
	_ = r.s.Init(r.buf)
	r.armed = false
}

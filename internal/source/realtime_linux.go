//go:build linux

package source

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Realtime переводит вызывающий поток в SCHED_FIFO с приоритетом prio и фиксирует
// память процесса в RAM (mlockall). Горутина должна быть привязана к потоку
// (runtime.LockOSThread) до вызова restore.
// restore возвращает прежнюю политику планирования и снимает mlockall.
func Realtime(prio int) (restore func() error, err error) {
	if err := checkPriority(prio); err != nil {
		return nil, err
	}
	old, err := unix.SchedGetAttr(0, 0)
	if err != nil {
		return nil, fmt.Errorf("realtime: sched_getattr: %w", err)
	}
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return nil, fmt.Errorf("realtime: mlockall: %w", err)
	}
	attr := unix.SchedAttr{Policy: unix.SCHED_FIFO, Priority: uint32(prio)}
	if err := unix.SchedSetAttr(0, &attr, 0); err != nil {
		_ = unix.Munlockall()
		return nil, fmt.Errorf("realtime: sched_setattr: %w", err)
	}
	return func() error {
		serr := unix.SchedSetAttr(0, old, 0)
		merr := unix.Munlockall()
		if serr != nil {
			return fmt.Errorf("realtime: restore sched: %w", serr)
		}
		if merr != nil {
			return fmt.Errorf("realtime: munlockall: %w", merr)
		}
		return nil
	}, nil
}

package source

import "fmt"

// Диапазон приоритетов SCHED_FIFO в Linux.
const (
	MinRealtimePriority = 1
	MaxRealtimePriority = 99
)

func checkPriority(prio int) error {
	if prio < MinRealtimePriority || prio > MaxRealtimePriority {
		return fmt.Errorf("realtime: priority %d out of %d..%d", prio, MinRealtimePriority, MaxRealtimePriority)
	}
	return nil
}

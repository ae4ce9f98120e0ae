//go:build !linux

package source

import (
	"fmt"
	"runtime"
)

// Realtime доступен только на Linux.
func Realtime(prio int) (restore func() error, err error) {
	if err := checkPriority(prio); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("realtime: not supported on %s", runtime.GOOS)
}

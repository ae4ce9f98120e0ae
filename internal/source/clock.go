package source

import "time"

var clockStart = time.Now()

// monotonicNow — монотонное время в нс от старта процесса для отметок фронтов.
var monotonicNow = func() int64 {
	return int64(time.Since(clockStart))
}

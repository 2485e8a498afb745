//go:build !amd64

package hikaku

import "time"

var epoch = time.Now()

// CycleStart returns nanoseconds on the monotonic clock. Architectures
// without an exposed cycle counter measure in nanoseconds instead.
func CycleStart() uint64 {
	return uint64(time.Since(epoch))
}

// CycleStop returns nanoseconds on the monotonic clock.
func CycleStop() uint64 {
	return uint64(time.Since(epoch))
}

package hikaku

import "runtime"

// overheadRounds is the number of empty start/stop pairs timed when
// calibrating a worker.
const overheadRounds = 8

// Thunk runs one benchmark iteration and returns the elapsed cycles.
type Thunk interface {
	Invoke() uint64
}

// ThunkFunc adapts a function to the Thunk interface.
type ThunkFunc func() uint64

func (f ThunkFunc) Invoke() uint64 { return f() }

// Bench returns a thunk timing fn. The result of fn is kept in a sink owned
// by the thunk so the call cannot be optimized away; only the cycles spent
// inside fn are reported.
func Bench[O any](fn func() O) Thunk {
	var sink O
	return ThunkFunc(func() uint64 {
		start := CycleStart()
		sink = fn()
		end := CycleStop()
		runtime.KeepAlive(sink)
		return sub(end, start)
	})
}

// Timed returns a thunk for functions that time themselves by calling
// Start and Stop on the given timer around the region of interest.
func Timed[O any](fn func(*Timer) O) Thunk {
	var sink O
	t := new(Timer)
	return ThunkFunc(func() uint64 {
		t.Reset()
		sink = fn(t)
		runtime.KeepAlive(sink)
		return t.Elapsed()
	})
}

// Timer measures the elapsed cycles of a code region.
type Timer struct {
	start   uint64
	elapsed uint64
}

// Start reads the starting timestamp.
func (t *Timer) Start() {
	t.start = CycleStart()
}

// Stop records the cycles elapsed since Start.
func (t *Timer) Stop() {
	t.elapsed = sub(CycleStop(), t.start)
}

func (t *Timer) Elapsed() uint64 { return t.elapsed }

func (t *Timer) Reset() {
	t.start = 0
	t.elapsed = 0
}

// Overhead measures the cost of the timestamp reads themselves and returns
// the minimum over several runs. The cost varies between cores and with
// micro-op conditions, so each worker calibrates on its own thread.
func Overhead() uint64 {
	overhead := ^uint64(0)
	for i := 0; i < overheadRounds; i++ {
		start := CycleStart()
		overhead = min(overhead, sub(CycleStop(), start))
	}
	return overhead
}

// sub returns a - b, or zero when b is larger.
func sub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}

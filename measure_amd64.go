package hikaku

// CycleStart returns a starting timestamp from the processor. Call it before
// the region to measure, paired with CycleStop after.
//
// Fences before RDTSC keep earlier instructions out of the measured region.
// See https://www.felixcloutier.com/x86/rdtsc
func CycleStart() uint64

// CycleStop returns an ending timestamp from the processor.
//
// RDTSCP waits until all previous instructions have executed and all
// previous loads are globally visible; the trailing LFENCE keeps later
// instructions from starting before the read.
// See https://www.felixcloutier.com/x86/rdtscp
func CycleStop() uint64

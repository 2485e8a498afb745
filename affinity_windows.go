//go:build windows

package hikaku

import (
	"math/bits"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                   = windows.NewLazySystemDLL("kernel32.dll")
	procGetProcessAffinityMask = kernel32.NewProc("GetProcessAffinityMask")
	procSetThreadAffinityMask  = kernel32.NewProc("SetThreadAffinityMask")
)

// allowedCPUs returns the CPUs in the process affinity mask, in ascending
// order. Only the first processor group is considered.
func allowedCPUs() ([]int, error) {
	var processMask, systemMask uintptr
	r, _, err := procGetProcessAffinityMask.Call(
		uintptr(windows.CurrentProcess()),
		uintptr(unsafe.Pointer(&processMask)),
		uintptr(unsafe.Pointer(&systemMask)))
	if r == 0 {
		return nil, err
	}
	cpus := make([]int, 0, bits.OnesCount64(uint64(processMask)))
	for cpu := 0; cpu < bits.UintSize; cpu++ {
		if processMask&(1<<cpu) != 0 {
			cpus = append(cpus, cpu)
		}
	}
	return cpus, nil
}

// pinThread restricts the calling OS thread to one CPU. The caller must
// hold runtime.LockOSThread.
func pinThread(cpu int) error {
	thread, err := windows.GetCurrentThread()
	if err != nil {
		return err
	}
	r, _, err := procSetThreadAffinityMask.Call(uintptr(thread), uintptr(1)<<cpu)
	if r == 0 {
		return err
	}
	return nil
}

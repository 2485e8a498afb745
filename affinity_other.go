//go:build !linux && !windows

package hikaku

// allowedCPUs reports no CPUs, which disables pinning.
func allowedCPUs() ([]int, error) {
	return nil, nil
}

func pinThread(int) error {
	return nil
}

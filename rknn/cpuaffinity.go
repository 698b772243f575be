package rknn

import (
	"fmt"
	"strings"
	"syscall"
	"unsafe"
)

// CoreType selects a class of CPU cores on big.LITTLE SoCs
type CoreType int

const (
	FastCores CoreType = iota
	SlowCores
	AllCores
)

// cpuCores lists the fast and slow CPU core numbers of each platform.
// Platforms with a single core type list them as fast
var cpuCores = map[string]struct{ fast, slow []int }{
	"rk3562": {fast: []int{0, 1, 2, 3}},
	"rk3566": {fast: []int{0, 1, 2, 3}},
	"rk3568": {fast: []int{0, 1, 2, 3}},
	"rk3576": {fast: []int{4, 5, 6, 7}, slow: []int{0, 1, 2, 3}},
	"rk3582": {fast: []int{4, 5}, slow: []int{0, 1, 2, 3}},
	"rk3588": {fast: []int{4, 5, 6, 7}, slow: []int{0, 1, 2, 3}},
}

// CPUCoreMask calculates the affinity mask of the given CPU core numbers,
// eg: []int{4,5,6,7}
func CPUCoreMask(cores []int) uintptr {

	var mask uintptr

	for _, core := range cores {
		mask |= 1 << core
	}

	return mask
}

// PlatformCoreMask returns the affinity mask of the core type on the
// platform, one of rk3562|rk3566|rk3568|rk3576|rk3582|rk3588
func PlatformCoreMask(platform string, ct CoreType) (uintptr, error) {

	cores, ok := cpuCores[strings.ToLower(strings.TrimSpace(platform))]

	if !ok {
		return 0, fmt.Errorf("unknown platform: %s", platform)
	}

	switch ct {
	case FastCores:
		return CPUCoreMask(cores.fast), nil
	case SlowCores:
		if len(cores.slow) == 0 {
			return CPUCoreMask(cores.fast), nil
		}
		return CPUCoreMask(cores.slow), nil
	case AllCores:
		return CPUCoreMask(cores.fast) | CPUCoreMask(cores.slow), nil
	}

	return 0, fmt.Errorf("unknown core type %d", int(ct))
}

// SetCPUAffinity pins the process to the CPU cores in the mask
func SetCPUAffinity(mask uintptr) error {

	_, _, errno := syscall.RawSyscall(syscall.SYS_SCHED_SETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if errno != 0 {
		return fmt.Errorf("failed to set CPU affinity: %w", errno)
	}

	return nil
}

// SetCPUAffinityByPlatform pins the process to the core type of the platform
func SetCPUAffinityByPlatform(platform string, ct CoreType) error {

	mask, err := PlatformCoreMask(platform, ct)

	if err != nil {
		return err
	}

	return SetCPUAffinity(mask)
}

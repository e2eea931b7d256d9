//go:build windows

package debug

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// processRSS returns the current working set size in bytes.
func processRSS() (uint64, error) {
	var pmc windows.PROCESS_MEMORY_COUNTERS
	pmc.CB = uint32(unsafe.Sizeof(pmc))
	if err := windows.GetProcessMemoryInfo(windows.CurrentProcess(), &pmc, pmc.CB); err != nil {
		return 0, err
	}
	return uint64(pmc.WorkingSetSize), nil
}

//go:build windows

package procrunner

import (
	"golang.org/x/sys/windows"
)

// sampleCPUSeconds mirrors the original implementation's Windows branch,
// which sampled GetProcessTimes live inside the poll loop (unlike its POSIX
// branch, which only checked CPU time once at exit via rusage).
func sampleCPUSeconds(pid int) (float64, bool) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return 0, false
	}
	defer windows.CloseHandle(h)

	var creation, exit, kernel, user windows.Filetime
	if err := windows.GetProcessTimes(h, &creation, &exit, &kernel, &user); err != nil {
		return 0, false
	}

	return filetimeSeconds(kernel) + filetimeSeconds(user), true
}

func filetimeSeconds(ft windows.Filetime) float64 {
	hundredNs := uint64(ft.HighDateTime)<<32 | uint64(ft.LowDateTime)
	return float64(hundredNs) * 1e-7
}

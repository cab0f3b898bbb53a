//go:build windows

package procrunner

import "os"

// exitCodeSignaled has no signal-based exit convention on Windows;
// Process.Kill() terminates with an ordinary (non-negative) exit code that
// state.ExitCode() already reports correctly.
func exitCodeSignaled(state *os.ProcessState) int {
	return state.ExitCode()
}

// finalCPUSeconds: the live sample from sampleCPUSeconds (cpu_windows.go)
// already reflects GetProcessTimes as of the last poll tick before exit;
// Go's os.ProcessState does not expose rusage on Windows, so the last live
// sample is the authoritative final value there (see Run()).
func finalCPUSeconds(state *os.ProcessState) float64 {
	return 0
}

// Package evaluator loads the pluggable scoring function a problem names in
// its Testcases.EvaluatorName and invokes it once per subtest. The ABI is
// the original implementation's JudgeAPIFuncUTF8 C contract: a shared
// library exporting a function named "Judge" that receives the contestant's
// work directory, the subtest's reference directory, the expected-output
// filename, and the problem name, and returns a score in [0.0, 1.0] plus a
// plug-in-allocated comment string that the caller (this package) frees.
package evaluator

import "fmt"

// Func is the Go-side shape of one loaded evaluator: given the contestant's
// materialized work directory, the subtest's reference directory, the
// expected-output filename within it, and the problem name, it returns a
// score fraction in [0.0, 1.0] and a human-readable comment.
type Func func(workDir, testDir, outputFile, testName string) (score float64, comment string, err error)

// Load resolves path to a Func, dispatching to the platform-specific
// dynamic-loading implementation (loader_cgo.go, loader_nocgo.go,
// loader_windows.go). The returned Func is safe to call repeatedly but not
// concurrently — the original ABI has no notion of reentrancy, matching the
// judging pipeline's one-subtest-at-a-time contract.
func Load(path string) (Func, error) {
	if path == DefaultName {
		return Default, nil
	}
	return loadPlatform(path)
}

func errUnsupported(reason string) error {
	return fmt.Errorf("evaluator: cannot load plugin: %s", reason)
}

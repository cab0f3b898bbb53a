//go:build !cgo && !windows

package evaluator

// loadPlatform has no non-cgo dynamic-loading path on POSIX: dlopen/dlsym
// require cgo. Builds without cgo enabled can still run the default
// evaluator (default.go); they just cannot load a Configuration-named
// plugin.
func loadPlatform(path string) (Func, error) {
	return nil, errUnsupported("this binary was built without cgo; dlopen-based evaluator loading is unavailable")
}

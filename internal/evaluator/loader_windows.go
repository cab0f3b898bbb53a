//go:build !cgo && windows

package evaluator

// loadPlatform: like the POSIX no-cgo build, there is no pure-Go way to
// dlopen a DLL, resolve its "Judge" export, and reliably recover its
// float64 return value (Go's syscall.Proc.Call does not surface the XMM0
// register a cdecl/stdcall double return uses) without cgo.
func loadPlatform(path string) (Func, error) {
	return nil, errUnsupported("this binary was built without cgo; LoadLibraryW-based evaluator loading is unavailable")
}

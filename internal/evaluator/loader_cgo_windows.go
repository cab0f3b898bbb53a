//go:build cgo && windows

package evaluator

/*
#define NOMINMAX
#define WIN32_LEAN_AND_MEAN
#include <windows.h>
#include <stdlib.h>

typedef double (*judge_fn)(wchar_t*, wchar_t*, wchar_t*, wchar_t*, wchar_t**);

static double call_judge_w(void *fn, wchar_t *a, wchar_t *b, wchar_t *c, wchar_t *d, wchar_t **comments) {
	judge_fn f = (judge_fn)fn;
	return f(a, b, c, d, comments);
}
*/
import "C"

import (
	"syscall"
	"unsafe"
)

// loadPlatform mirrors the original Load()'s Windows branch exactly,
// including the JudgeAPIFunc wchar_t* ABI: it only needs cgo to get a real
// C call site, since Go's syscall.Proc.Call cannot recover a cdecl double
// return value. Path and argument conversion between UTF-8 and UTF-16 goes
// through syscall.UTF16PtrFromString and syscall.UTF16ToString.
func loadPlatform(path string) (Func, error) {
	wpath, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return nil, errUnsupported("path encoding: " + err.Error())
	}

	handle := C.LoadLibraryW((*C.WCHAR)(unsafe.Pointer(wpath)))
	if handle == nil {
		return nil, errUnsupported("LoadLibraryW " + path + " failed")
	}

	sym := C.GetProcAddress(handle, C.CString("Judge"))
	if sym == nil {
		return nil, errUnsupported("GetProcAddress(Judge) in " + path + " failed")
	}

	return func(workDir, testDir, outputFile, testName string) (float64, string, error) {
		wWorkDir, err := syscall.UTF16PtrFromString(workDir)
		if err != nil {
			return 0, "", err
		}
		wTestDir, err := syscall.UTF16PtrFromString(testDir)
		if err != nil {
			return 0, "", err
		}
		wOutputFile, err := syscall.UTF16PtrFromString(outputFile)
		if err != nil {
			return 0, "", err
		}
		wTestName, err := syscall.UTF16PtrFromString(testName)
		if err != nil {
			return 0, "", err
		}

		var wComments *C.wchar_t
		score := C.call_judge_w(
			unsafe.Pointer(sym),
			(*C.wchar_t)(unsafe.Pointer(wWorkDir)),
			(*C.wchar_t)(unsafe.Pointer(wTestDir)),
			(*C.wchar_t)(unsafe.Pointer(wOutputFile)),
			(*C.wchar_t)(unsafe.Pointer(wTestName)),
			&wComments,
		)

		comment := ""
		if wComments != nil {
			comment = wideToGoString(wComments)
			C.free(unsafe.Pointer(wComments))
		}

		return float64(score), comment, nil
	}, nil
}

func wideToGoString(p *C.wchar_t) string {
	var units []uint16
	base := unsafe.Pointer(p)
	for i := 0; ; i++ {
		u := *(*uint16)(unsafe.Add(base, uintptr(i)*2))
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return syscall.UTF16ToString(units)
}

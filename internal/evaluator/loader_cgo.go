//go:build cgo && !windows

package evaluator

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

typedef double (*judge_fn)(char*, char*, char*, char*, char**);

static double call_judge(void *fn, char *a, char *b, char *c, char *d, char **comments) {
	judge_fn f = (judge_fn)fn;
	return f(a, b, c, d, comments);
}
*/
import "C"

import (
	"path/filepath"
	"strings"
	"unsafe"
)

// loadPlatform dlopen()s path and resolves its "Judge" symbol, mirroring the
// original Load()'s POSIX branch: a ".dll" extension is rewritten to ".so"
// and the base name gets a "lib" prefix when it lacks one, so a
// Configuration written against Windows evaluator filenames still resolves
// on Linux. Any other extension (or none) is left as it is.
func loadPlatform(path string) (Func, error) {
	resolved := posixLibraryName(path)

	cPath := C.CString(resolved)
	defer C.free(unsafe.Pointer(cPath))

	handle := C.dlopen(cPath, C.RTLD_NOW|C.RTLD_LOCAL)
	if handle == nil {
		return nil, errUnsupported("dlopen " + resolved + ": " + C.GoString(C.dlerror()))
	}

	cSym := C.CString("Judge")
	defer C.free(unsafe.Pointer(cSym))

	sym := C.dlsym(handle, cSym)
	if sym == nil {
		return nil, errUnsupported("dlsym(Judge) in " + resolved + ": " + C.GoString(C.dlerror()))
	}

	return func(workDir, testDir, outputFile, testName string) (float64, string, error) {
		cWorkDir := C.CString(workDir)
		defer C.free(unsafe.Pointer(cWorkDir))
		cTestDir := C.CString(testDir)
		defer C.free(unsafe.Pointer(cTestDir))
		cOutputFile := C.CString(outputFile)
		defer C.free(unsafe.Pointer(cOutputFile))
		cTestName := C.CString(testName)
		defer C.free(unsafe.Pointer(cTestName))

		var cComments *C.char
		score := C.call_judge(sym, cWorkDir, cTestDir, cOutputFile, cTestName, &cComments)

		comment := ""
		if cComments != nil {
			comment = C.GoString(cComments)
			C.free(unsafe.Pointer(cComments))
		}

		return float64(score), comment, nil
	}, nil
}

func posixLibraryName(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".dll") {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".so"
	}
	dir, name := filepath.Split(path)
	if !strings.HasPrefix(name, "lib") {
		name = "lib" + name
	}
	return filepath.Join(dir, name)
}

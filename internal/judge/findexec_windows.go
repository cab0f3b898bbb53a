//go:build windows

package judge

import (
	"os"
	"strings"
)

// isExecutable approximates the original's GetBinaryTypeW predicate, which
// this package cannot call without cgo; a PE-loadable extension is the
// practical POSIX-free equivalent for a compiler's own direct build output.
func isExecutable(info os.FileInfo) bool {
	ext := strings.ToLower(extOf(info.Name()))
	return ext == ".exe" || ext == ".com" || ext == ".bat" || ext == ".cmd"
}

func extOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i:]
		}
		if name[i] == '\\' || name[i] == '/' {
			break
		}
	}
	return ""
}

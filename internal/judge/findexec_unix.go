//go:build !windows

package judge

import "os"

// isExecutable matches the original's POSIX branch: the owner-execute bit
// must be set.
func isExecutable(info os.FileInfo) bool {
	return info.Mode()&0o100 != 0
}

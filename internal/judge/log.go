package judge

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
)

var jobCounter atomic.Uint64

// jobLog is the per-job log file under submissionsDir/$History/, named
// "<idx>[user][problem].txt" per the original implementation. Line writes
// to the file only; Pipeline.Judge's logf sends each line both here and to
// the structured process-wide logger.
type jobLog struct {
	file *os.File
}

func openJobLog(submissionsDir, user, problem string) (*jobLog, error) {
	historyDir := filepath.Join(submissionsDir, "$History")
	if err := os.MkdirAll(historyDir, 0o755); err != nil {
		return nil, fmt.Errorf("create $History: %w", err)
	}

	idx := jobCounter.Add(1)
	name := fmt.Sprintf("%d[%s][%s].txt", idx, user, problem)

	f, err := os.Create(filepath.Join(historyDir, name))
	if err != nil {
		return nil, err
	}
	return &jobLog{file: f}, nil
}

func (l *jobLog) Line(format string, args ...any) {
	fmt.Fprintf(l.file, format+"\n", args...)
}

func (l *jobLog) Close() error {
	return l.file.Close()
}

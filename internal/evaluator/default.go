package evaluator

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultName is the EvaluatorName a Testcases entry can use to opt into the
// builtin comparator instead of naming a plugin file. It is the one trivial
// evaluator this package ships in-process, used for problems whose scoring
// is a plain diff.
const DefaultName = "builtin:lines-words-ci"

// Default compares testDir/outputFile (the reference answer) against
// workDir/outputFile (the contestant's produced output) line by line,
// word by word, case-insensitively, ignoring trailing whitespace per line
// and trailing blank lines. It scores 1.0 on an exact match, 0.0 otherwise
// — no partial credit, matching the "no partial-credit default" a plain
// text-diff evaluator implies.
func Default(workDir, testDir, outputFile, testName string) (float64, string, error) {
	got, err := readLines(filepath.Join(workDir, outputFile))
	if err != nil {
		return 0, "", fmt.Errorf("reading contestant output: %w", err)
	}
	want, err := readLines(filepath.Join(testDir, outputFile))
	if err != nil {
		return 0, "", fmt.Errorf("reading reference output: %w", err)
	}

	if linesEqualCI(got, want) {
		return 1.0, "output matches reference exactly", nil
	}
	return 0.0, fmt.Sprintf("output does not match reference (%d lines vs %d lines)", len(got), len(want)), nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 32*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), " \t\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

func linesEqualCI(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !wordsEqualCI(a[i], b[i]) {
			return false
		}
	}
	return true
}

func wordsEqualCI(a, b string) bool {
	aw := strings.Fields(a)
	bw := strings.Fields(b)
	if len(aw) != len(bw) {
		return false
	}
	for i := range aw {
		if !strings.EqualFold(aw[i], bw[i]) {
			return false
		}
	}
	return true
}

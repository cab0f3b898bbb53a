// Command lineswordsci builds the bundled case-insensitive line/word
// comparator as a real loadable evaluator plug-in (build with
// `go build -buildmode=c-shared`). It exports "Judge" with the same C ABI
// the loader in internal/evaluator expects, making concrete the stub the
// original implementation shipped empty (C1LinesWordsIgnoreCase.c).
//
// The comparison logic itself mirrors internal/evaluator/default.go's
// builtin evaluator line for line; this package exists only to give that
// logic a real dlopen-able home, for Configurations that reference it by
// filename rather than the "builtin:lines-words-ci" in-process shortcut.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

const maxLineBufferBytes = 32 * 1024 * 1024

//export Judge
func Judge(contestantsDir, testsDir, testOutputs, testName *C.char, comments **C.char) C.double {
	workDir := C.GoString(contestantsDir)
	testDir := C.GoString(testsDir)
	outputFile := C.GoString(testOutputs)

	score, comment := judgeLinesWordsCI(workDir, testDir, outputFile)

	if comments != nil {
		*comments = C.CString(comment)
	}
	return C.double(score)
}

func judgeLinesWordsCI(workDir, testDir, outputFile string) (float64, string) {
	actual, err := readLines(filepath.Join(workDir, outputFile))
	if err != nil {
		return 0.0, "cannot read contestant output: " + err.Error()
	}
	expected, err := readLines(filepath.Join(testDir, outputFile))
	if err != nil {
		return 0.0, "cannot read reference output: " + err.Error()
	}

	if linesEqualCI(actual, expected) {
		return 1.0, "OK"
	}
	return 0.0, "output mismatch"
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBufferBytes)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), " \t\r\n"))
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
	wa, wb := strings.Fields(a), strings.Fields(b)
	if len(wa) != len(wb) {
		return false
	}
	for i := range wa {
		if !strings.EqualFold(wa[i], wb[i]) {
			return false
		}
	}
	return true
}

func main() {}

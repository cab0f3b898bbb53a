// Package judge implements the judging pipeline: compile a submission, run
// it against every subtest under the Process Runner, score each with the
// loaded Evaluator, and record the total in the Score Aggregator.
//
// This is a close transliteration of the original implementation's judge()
// function (JudgeBackend.cpp): same log file naming, same workdir
// materialization, same subtest loop and fault handling. The score table
// that function kept as a process-wide global is instead a field on
// Pipeline (Board), and the evaluator is loaded per job inside Judge rather
// than kept in a global slot; the job counter stays package-level (log.go)
// — see DESIGN.md for why.
package judge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"cpjudge/internal/compiler"
	"cpjudge/internal/evaluator"
	"cpjudge/internal/procrunner"
	"cpjudge/internal/scoreboard"
	"cpjudge/internal/types"
)

const compileTimeLimitSeconds = 60.0

// Pipeline holds everything one (user, problem) job needs: the fixed
// problem set and compiler table for this run, where to find evaluator
// plugins, and the score table jobs report into.
type Pipeline struct {
	SubmissionsDir string
	TestsDir       string
	JudgerPath     string
	Config         types.Configuration
	Testcases      map[string]types.Testcases
	Board          *scoreboard.Board
	Log            *logrus.Logger
}

// Judge runs one (user, problem) job to completion. It never returns an
// error for a judging fault — those are logged and scored as partial
// credit per spec; the returned error is reserved for a log-file open
// failure, matching the original's "abort with no side effects" path.
func (p *Pipeline) Judge(ctx context.Context, problem, user string) error {
	jlog, err := openJobLog(p.SubmissionsDir, user, problem)
	if err != nil {
		p.Log.WithError(err).WithFields(logrus.Fields{"user": user, "problem": problem}).
			Error("failed to open job log")
		return err
	}
	defer jlog.Close()

	logf := func(level logrus.Level, format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		jlog.Line("%s", msg)
		p.Log.WithFields(logrus.Fields{"user": user, "problem": problem}).Log(level, msg)
	}

	tests, ok := p.Testcases[problem]
	if !ok {
		logf(logrus.ErrorLevel, "%s doesn't have tests!", problem)
		return nil
	}

	sourceDir := filepath.Join(p.SubmissionsDir, user)
	info, err := os.Stat(sourceDir)
	if err != nil || !info.IsDir() {
		logf(logrus.ErrorLevel, "%s is not a directory", sourceDir)
		return nil
	}

	sourcePath, ext, name, found := findSourceFile(sourceDir, problem)
	if !found {
		logf(logrus.InfoLevel, "[%s/%s] source file not found", user, problem)
		return nil
	}

	item, ok := compiler.Resolve(p.Config.Compiler, ext)
	if !ok {
		logf(logrus.ErrorLevel, "[%s/%s] no compiler for %s", user, problem, ext)
		return nil
	}

	rawCmd, rawWorkDir, ok := compiler.ParseCommandTemplate(item.CommandTemplate)
	if !ok {
		logf(logrus.ErrorLevel, "[%s/%s] malformed compiler command", user, problem)
		return nil
	}

	workDir := procrunner.ExpandVars(rawWorkDir, map[string]string{
		"PATH": filepath.Join(p.Config.Environment.ContestHouse, "judgeWORK", uuid.NewString()),
	})

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		logf(logrus.ErrorLevel, "[%s/%s] failed to create work directory: %v", user, problem, err)
		return nil
	}
	if err := copyFile(sourcePath, filepath.Join(workDir, filepath.Base(sourcePath))); err != nil {
		logf(logrus.ErrorLevel, "[%s/%s] failed to copy source: %v", user, problem, err)
		return nil
	}

	expandedCmd := procrunner.ExpandVars(rawCmd, map[string]string{
		"NAME": name,
		"EXT":  ext,
		"PATH": sourcePath,
	})
	logf(logrus.DebugLevel, "[%s/%s] compiling with: [%s] at [%s]", user, problem, expandedCmd, workDir)

	argv := procrunner.Tokenize(expandedCmd)
	compileResult, err := procrunner.Run(ctx, argv, workDir, nil, compileTimeLimitSeconds, 0)
	if err != nil {
		logf(logrus.ErrorLevel, "[%s/%s] compiling failed: %v", user, problem, err)
		return nil
	}
	if compileResult.ExitCode != 0 {
		logf(logrus.ErrorLevel, "[%s/%s] compiling failed", user, problem)
		logf(logrus.ErrorLevel, "stderr:\n%s", compileResult.Stderr)
		logf(logrus.ErrorLevel, "stdout:\n%s", compileResult.Stdout)
		return nil
	}

	exePath, ok := findExecutable(workDir)
	if !ok {
		logf(logrus.ErrorLevel, "[%s/%s] executable not found", user, problem)
		return nil
	}
	logf(logrus.InfoLevel, "[%s/%s] compiled successfully at %s", user, problem, exePath)

	evalPath := tests.EvaluatorName
	if evalPath != evaluator.DefaultName {
		evalPath = filepath.Join(p.JudgerPath, evalPath)
	}
	eval, err := evaluator.Load(evalPath)
	if err != nil {
		logf(logrus.ErrorLevel, "[%s/%s] failed to load evaluator: %v", user, problem, err)
		return nil
	}
	logf(logrus.InfoLevel, "[%s/%s] loaded evaluator successfully", user, problem)

	points := p.runSubtests(ctx, exePath, workDir, problem, user, tests, eval, logf)

	logf(logrus.InfoLevel, "[%s/%s]: %v", user, problem, points)
	p.Board.Set(user, problem, points)
	return nil
}

func (p *Pipeline) runSubtests(
	ctx context.Context,
	exePath, workDir, problem, user string,
	tests types.Testcases,
	eval evaluator.Func,
	logf func(logrus.Level, string, ...any),
) float64 {
	var points float64

	for _, tc := range tests.Subtests {
		timeLimit := tc.EffectiveTimeLimit(tests)
		memoryLimit := tc.EffectiveMemoryLimit(tests)
		mark := tc.EffectiveMark(tests)

		caseDir := filepath.Join(p.TestsDir, problem, tc.Name)

		os.Remove(filepath.Join(workDir, tests.InputFile))
		os.Remove(filepath.Join(workDir, tests.OutputFile))

		logf(logrus.InfoLevel, "[%s/%s/%s] judging...", user, problem, tc.Name)

		var stdin []byte
		if tests.UseStdin {
			data, err := os.ReadFile(filepath.Join(caseDir, tests.InputFile))
			if err != nil {
				logf(logrus.ErrorLevel, "[%s/%s] critical error: %v", user, problem, err)
				continue
			}
			stdin = data
		} else {
			if err := copyFile(filepath.Join(caseDir, tests.InputFile), filepath.Join(workDir, tests.InputFile)); err != nil {
				logf(logrus.ErrorLevel, "[%s/%s] critical error: %v", user, problem, err)
				continue
			}
			if !tests.UseStdout {
				if err := copyFile(filepath.Join(caseDir, tests.OutputFile), filepath.Join(workDir, tests.OutputFile)); err != nil {
					logf(logrus.ErrorLevel, "[%s/%s] critical error: %v", user, problem, err)
					continue
				}
			}
		}

		result, err := procrunner.Run(ctx, []string{exePath}, workDir, stdin, timeLimit, memoryLimit)
		if err != nil {
			if fault, isFault := err.(*procrunner.Fault); isFault && fault.Kind == procrunner.TLE {
				logf(logrus.ErrorLevel, "[%s/%s] TLEd %s", user, problem, tc.Name)
			} else {
				logf(logrus.ErrorLevel, "[%s/%s] critical error: %v", user, problem, err)
			}
			continue
		}
		if result.ExitCode != 0 {
			logf(logrus.ErrorLevel, "[%s/%s] exited with code 0x%x", user, problem, result.ExitCode)
			continue
		}
		logf(logrus.InfoLevel, "Time ~%v seconds", result.CPUSeconds)

		if tests.UseStdout {
			if err := os.WriteFile(filepath.Join(workDir, tests.OutputFile), result.Stdout, 0o644); err != nil {
				logf(logrus.ErrorLevel, "[%s/%s] critical error writing actual output: %v", user, problem, err)
				continue
			}
			if err := os.WriteFile(filepath.Join(caseDir, tests.OutputFile), result.Stdout, 0o644); err != nil {
				logf(logrus.ErrorLevel, "[%s/%s] critical error writing actual output: %v", user, problem, err)
				continue
			}
		}

		frac, comment, err := eval(workDir, caseDir, tests.OutputFile, problem)
		if err != nil {
			logf(logrus.ErrorLevel, "[%s/%s] evaluator error: %v", user, problem, err)
			continue
		}

		subtestPoints := frac * mark
		logf(logrus.InfoLevel, "[%s/%s/%s]: %v:\n%s", user, problem, tc.Name, subtestPoints, comment)
		points += subtestPoints
	}

	return points
}

func findSourceFile(dir, problem string) (path, ext, stem string, ok bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", "", false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		extension := filepath.Ext(name)
		stemName := strings.TrimSuffix(name, extension)
		if stemName == problem {
			return filepath.Join(dir, name), extension, stemName, true
		}
	}
	return "", "", "", false
}

func findExecutable(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if isExecutable(info) {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}


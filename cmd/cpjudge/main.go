// Command cpjudge is a competitive-programming judge: it compiles every
// contestant's submission against a problem's compiler configuration, runs
// it against each subtest under a sandboxed process runner, scores the
// result with a pluggable evaluator, and records totals in a score table.
//
// Flag surface and the signal-driven graceful shutdown in watch mode are
// adapted from the original implementation's CLI11-based main() (see
// DESIGN.md); subcommand/flag wiring style follows the teacher's cli/main.go.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	appconfig "cpjudge/internal/config"
	"cpjudge/internal/dashboard"
	"cpjudge/internal/judge"
	"cpjudge/internal/scoreboard"
	"cpjudge/internal/types"
	"cpjudge/internal/watcher"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		submissionsDir string
		testsDir       string
		settingsFile   string
		judgePaths     string
		watchMode      bool
		dashboardAddr  string
	)

	cmd := &cobra.Command{
		Use:   "cpjudge",
		Short: "competitive programming judge",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), runOptions{
				submissionsDir: submissionsDir,
				testsDir:       testsDir,
				settingsFile:   settingsFile,
				judgePaths:     judgePaths,
				watchMode:      watchMode,
				dashboardAddr:  dashboardAddr,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&submissionsDir, "submissions", "s", "", "path to the submissions directory (required)")
	flags.StringVarP(&testsDir, "tests", "t", "", "path to the tests directory (required)")
	flags.StringVarP(&settingsFile, "settings", "c", "", "path to a compiler/environment settings file")
	flags.StringVarP(&judgePaths, "judge-paths", "j", "judgers", "path to the evaluator plug-in directory")
	flags.BoolVarP(&watchMode, "wait-submittor-mode", "w", false, "wait for new submissions instead of exiting")
	flags.StringVar(&dashboardAddr, "dashboard-addr", "", "HOST:PORT to serve the live status dashboard on (watch mode only, empty disables it)")
	_ = cmd.MarkFlagRequired("submissions")
	_ = cmd.MarkFlagRequired("tests")

	return cmd
}

type runOptions struct {
	submissionsDir string
	testsDir       string
	settingsFile   string
	judgePaths     string
	watchMode      bool
	dashboardAddr  string
}

func run(ctx context.Context, opts runOptions) error {
	opCfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("load operator config: %w", err)
	}

	log := logrus.New()
	log.SetLevel(opCfg.GetLogLevel())

	submissionsDir, err := filepath.Abs(opts.submissionsDir)
	if err != nil {
		return fmt.Errorf("resolve submissions directory: %w", err)
	}
	testsDir, err := filepath.Abs(opts.testsDir)
	if err != nil {
		return fmt.Errorf("resolve tests directory: %w", err)
	}

	problemConfig, err := appconfig.LoadConfiguration(opts.settingsFile)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if problemConfig.Environment.ContestHouse == "" {
		problemConfig.Environment.ContestHouse = opCfg.ContestHouse
	}

	testcases, err := appconfig.DiscoverTestcases(testsDir)
	if err != nil {
		return fmt.Errorf("discover tests: %w", err)
	}

	board := scoreboard.New()
	pipeline := &judge.Pipeline{
		SubmissionsDir: submissionsDir,
		TestsDir:       testsDir,
		JudgerPath:     opts.judgePaths,
		Config:         problemConfig,
		Testcases:      testcases,
		Board:          board,
		Log:            log,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var dash *dashboard.Dashboard
	if opts.dashboardAddr != "" && opts.watchMode {
		dash = dashboard.New(board, log)
		go func() {
			if err := dash.ListenAndServe(ctx, opts.dashboardAddr); err != nil {
				log.WithError(err).Error("dashboard server exited")
			}
		}()
	}

	// Always judge every pre-existing (user, problem) pair first, matching
	// the original's unconditional batch pass before it ever looks at
	// waitSubmittorMode: watch mode picks up from there, it doesn't replace
	// it.
	if err := runBatch(ctx, pipeline, submissionsDir, opCfg.MaxConcurrentJobs, log, board); err != nil {
		return err
	}

	if opts.watchMode {
		return runWatch(ctx, pipeline, submissionsDir, log, dash)
	}
	return nil
}

// runBatch judges every (user, problem) pair once. Distinct (user, problem)
// jobs run concurrently, bounded by maxConcurrent; the subtests within one
// job remain strictly sequential (judge.Pipeline.Judge already enforces
// that). Grounded on sourcegraph/conc's bounded pool, the idiomatic
// replacement for the original's single-threaded double loop over
// users x problems.
func runBatch(ctx context.Context, pipeline *judge.Pipeline, submissionsDir string, maxConcurrent int, log *logrus.Logger, board *scoreboard.Board) error {
	users, err := listUserDirs(submissionsDir)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}

	p := pool.New().WithMaxGoroutines(maxConcurrent)
	for _, user := range users {
		for problem := range pipeline.Testcases {
			user, problem := user, problem
			p.Go(func() {
				if err := pipeline.Judge(ctx, problem, user); err != nil {
					log.WithError(err).WithFields(logrus.Fields{"user": user, "problem": problem}).
						Error("job failed to run")
				}
			})
		}
	}
	p.Wait()

	renderScoreboard(board)
	return nil
}

// runWatch runs a single dispatch worker driven by the Submission Watcher:
// every accepted source file triggers exactly one judging job, in arrival
// order, for as long as the process runs (until ctx is cancelled, e.g. by
// SIGINT/SIGTERM).
func runWatch(ctx context.Context, pipeline *judge.Pipeline, submissionsDir string, log *logrus.Logger, dash *dashboard.Dashboard) error {
	extensions := compilerExtensions(pipeline.Config.Compiler)

	w, err := watcher.New(submissionsDir, extensions, func(path string) {
		user, problem, ok := userAndProblemFromPath(submissionsDir, path)
		if !ok {
			return
		}
		if _, known := pipeline.Testcases[problem]; !known {
			return
		}
		if err := pipeline.Judge(ctx, problem, user); err != nil {
			log.WithError(err).WithFields(logrus.Fields{"user": user, "problem": problem}).
				Error("job failed to run")
			return
		}
		renderScoreboard(pipeline.Board)
		if dash != nil {
			if score, ok := pipeline.Board.Get(user, problem); ok {
				dash.Notify(user, problem, score)
			}
		}
	}, log.WithField("component", "watcher"))
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	if err := w.Start(); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	log.Info("watching for submissions, press Ctrl+C to stop")

	<-ctx.Done()
	w.Stop()
	return nil
}

func listUserDirs(submissionsDir string) ([]string, error) {
	entries, err := os.ReadDir(submissionsDir)
	if err != nil {
		return nil, err
	}
	var users []string
	for _, e := range entries {
		if e.IsDir() && e.Name() != "$History" {
			users = append(users, e.Name())
		}
	}
	return users, nil
}

func compilerExtensions(items []types.CompilerItem) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		if _, ok := seen[item.Ext]; ok {
			continue
		}
		seen[item.Ext] = struct{}{}
		out = append(out, item.Ext)
	}
	return out
}

// userAndProblemFromPath recovers (user, problem) from a path the watcher
// observed under submissionsDir/<user>/<problem><ext>.
func userAndProblemFromPath(submissionsDir, path string) (user, problem string, ok bool) {
	rel, err := filepath.Rel(submissionsDir, path)
	if err != nil {
		return "", "", false
	}
	dir, file := filepath.Split(rel)
	dir = filepath.Clean(dir)
	if dir == "." || dir == "" {
		return "", "", false
	}
	ext := filepath.Ext(file)
	name := file[:len(file)-len(ext)]
	return dir, name, true
}

func renderScoreboard(board *scoreboard.Board) {
	color.NoColor = false
	scoreboard.Render(os.Stdout, board)
}

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cpjudge/internal/types"
)

func mustWriteExecutable(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestUserAndProblemFromPath(t *testing.T) {
	submissionsDir := "/tmp/submissions"
	user, problem, ok := userAndProblemFromPath(submissionsDir, filepath.Join(submissionsDir, "alice", "p1.cpp"))
	if !ok || user != "alice" || problem != "p1" {
		t.Fatalf("got user=%q problem=%q ok=%v", user, problem, ok)
	}
}

func TestUserAndProblemFromPathRejectsTopLevelFile(t *testing.T) {
	submissionsDir := "/tmp/submissions"
	_, _, ok := userAndProblemFromPath(submissionsDir, filepath.Join(submissionsDir, "p1.cpp"))
	if ok {
		t.Fatal("expected top-level file to be rejected")
	}
}

func TestCompilerExtensionsDeduplicates(t *testing.T) {
	items := []types.CompilerItem{
		{Ext: ".cpp"}, {Ext: ".c"}, {Ext: ".cpp"},
	}
	got := compilerExtensions(items)
	if len(got) != 2 {
		t.Fatalf("expected 2 unique extensions, got %v", got)
	}
}

// TestRunJudgesPreexistingSubmissionsBeforeWatching guards against watch
// mode silently skipping the initial batch pass: a submission already
// sitting in submissionsDir when --wait-submittor-mode is used must still
// get judged once, exactly as the original always ran its batch pass before
// ever looking at waitSubmittorMode.
func TestRunJudgesPreexistingSubmissionsBeforeWatching(t *testing.T) {
	submissionsDir := t.TempDir()
	testsDir := t.TempDir()
	contestHouse := t.TempDir()
	toolsDir := t.TempDir()

	userDir := filepath.Join(submissionsDir, "alice")
	if err := os.Mkdir(userDir, 0o755); err != nil {
		t.Fatal(err)
	}
	mustWriteExecutable(t, filepath.Join(userDir, "p1.sh"), "#!/bin/sh\ncat\n")

	fakeCompiler := filepath.Join(toolsDir, "fakecompiler.sh")
	mustWriteExecutable(t, fakeCompiler, "#!/bin/sh\ncp \"$1\" ./a.out\nchmod +x ./a.out\n")

	caseDir := filepath.Join(testsDir, "p1", "sub1")
	if err := os.MkdirAll(caseDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(caseDir, "in.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(caseDir, "out.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	settingsPath := filepath.Join(toolsDir, "settings.yaml")
	settingsYAML := "compiler:\n" +
		"  - ext: \".sh\"\n" +
		"    cmd: \"" + fakeCompiler + " %PATH%|@WorkDir=%PATH%\"\n" +
		"environment:\n" +
		"  contest_house: \"" + contestHouse + "\"\n"
	if err := os.WriteFile(settingsPath, []byte(settingsYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	settingsCfgPath := filepath.Join(testsDir, "p1", "Settings.cfg")
	settingsCfgYAML := "name: p1\n" +
		"input_file: in.txt\n" +
		"output_file: out.txt\n" +
		"evaluator_name: builtin:lines-words-ci\n" +
		"use_stdin: true\n" +
		"use_stdout: true\n" +
		"mark: 1.0\n" +
		"subtests:\n" +
		"  - name: sub1\n" +
		"    memory_limit: -1\n" +
		"    time_limit: -1\n" +
		"    mark: -1\n"
	if err := os.WriteFile(settingsCfgPath, []byte(settingsCfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := run(ctx, runOptions{
		submissionsDir: submissionsDir,
		testsDir:       testsDir,
		settingsFile:   settingsPath,
		judgePaths:     toolsDir,
		watchMode:      true,
	}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, err := os.Stat(filepath.Join(submissionsDir, "$History")); err != nil {
		t.Fatalf("expected the pre-existing submission to be judged before watching: %v", err)
	}
}

func TestListUserDirsExcludesHistory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"alice", "bob", "$History"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notadir.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	users, err := listUserDirs(dir)
	if err != nil {
		t.Fatalf("listUserDirs: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %v", users)
	}
}

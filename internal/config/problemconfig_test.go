package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigurationEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration: %v", err)
	}
	if len(cfg.Compiler) == 0 {
		t.Fatal("expected default compiler table")
	}
	if cfg.Environment.Identifier != "THEMISEnvironment" {
		t.Fatalf("unexpected environment identifier: %q", cfg.Environment.Identifier)
	}
}

func TestLoadConfigurationParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	yamlBody := "compiler:\n  - ext: .cpp\n    cmd: 'g++ %NAME%%EXT%|@WorkDir=%PATH%'\nenvironment:\n  contest_house: /tmp\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration: %v", err)
	}
	if len(cfg.Compiler) != 1 || cfg.Compiler[0].Ext != ".cpp" {
		t.Fatalf("unexpected compiler table: %+v", cfg.Compiler)
	}
	if cfg.Environment.ContestHouse != "/tmp" {
		t.Fatalf("unexpected contest house: %q", cfg.Environment.ContestHouse)
	}
}

func TestLoadConfigurationParsesThemisXML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.cfg")
	xmlBody := `<ThemisConfiguration><CompilerConfigurations><Item ext=".cpp" cmd="g++ %NAME%%EXT%|@WorkDir=%PATH%"/></CompilerConfigurations><Environment ContestHouse="/srv/contest"/></ThemisConfiguration>`
	if err := os.WriteFile(path, []byte(xmlBody), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration: %v", err)
	}
	if len(cfg.Compiler) != 1 || cfg.Compiler[0].Ext != ".cpp" {
		t.Fatalf("unexpected compiler table: %+v", cfg.Compiler)
	}
	if cfg.Environment.ContestHouse != "/srv/contest" {
		t.Fatalf("unexpected contest house: %q", cfg.Environment.ContestHouse)
	}
}

func TestDiscoverTestcasesSynthesizesDefaults(t *testing.T) {
	testsDir := t.TempDir()
	problemDir := filepath.Join(testsDir, "p1")
	if err := os.MkdirAll(filepath.Join(problemDir, "sub1"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(problemDir, "sub2"), 0o755); err != nil {
		t.Fatal(err)
	}

	tcs, err := DiscoverTestcases(testsDir)
	if err != nil {
		t.Fatalf("DiscoverTestcases: %v", err)
	}
	tc, ok := tcs["p1"]
	if !ok {
		t.Fatal("expected p1 in discovered testcases")
	}
	if tc.InputFile != "p1.INP" || tc.OutputFile != "p1.OUT" {
		t.Fatalf("unexpected io file names: %+v", tc)
	}
	if tc.Mark != 1.0 || tc.TimeLimit != 1.0 || tc.MemoryLimit != 1024 {
		t.Fatalf("unexpected synthesized defaults: %+v", tc)
	}
	if len(tc.Subtests) != 2 {
		t.Fatalf("expected 2 subtests, got %d", len(tc.Subtests))
	}
	for _, st := range tc.Subtests {
		if st.MemoryLimit != -1 || st.TimeLimit != -1 || st.Mark != 1.0 {
			t.Fatalf("unexpected subtest defaults: %+v", st)
		}
	}
}

func TestDiscoverTestcasesUsesSettingsCfgWhenPresent(t *testing.T) {
	testsDir := t.TempDir()
	problemDir := filepath.Join(testsDir, "p2")
	if err := os.MkdirAll(problemDir, 0o755); err != nil {
		t.Fatal(err)
	}
	settingsBody := "name: p2\ninput_file: custom.in\noutput_file: custom.out\nevaluator_name: builtin:lines-words-ci\nmark: 2.5\n"
	if err := os.WriteFile(filepath.Join(problemDir, "Settings.cfg"), []byte(settingsBody), 0o644); err != nil {
		t.Fatal(err)
	}

	tcs, err := DiscoverTestcases(testsDir)
	if err != nil {
		t.Fatalf("DiscoverTestcases: %v", err)
	}
	tc, ok := tcs["p2"]
	if !ok {
		t.Fatal("expected p2 in discovered testcases")
	}
	if tc.InputFile != "custom.in" || tc.Mark != 2.5 {
		t.Fatalf("expected parsed Settings.cfg to override defaults, got %+v", tc)
	}
}

package procrunner

import "testing"

func TestExpandVarsSubstitutes(t *testing.T) {
	got := ExpandVars("compile %SRC% -o %OUT%", map[string]string{
		"SRC": "main.cpp",
		"OUT": "main.exe",
	})
	want := "compile main.cpp -o main.exe"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExpandVarsLeavesUnknownKeysVerbatim(t *testing.T) {
	got := ExpandVars("run %MISSING% here", map[string]string{"OTHER": "x"})
	want := "run %MISSING% here"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExpandVarsIdentityWithEmptyMap(t *testing.T) {
	for _, s := range []string{"", "plain text", "100% done", "%A%%B%"} {
		if got := ExpandVars(s, map[string]string{}); got != s {
			t.Fatalf("ExpandVars(%q, {}) = %q, want %q", s, got, s)
		}
	}
}

func TestExpandVarsUnterminatedPercentIsLiteral(t *testing.T) {
	got := ExpandVars("50% off", map[string]string{"off": "discount"})
	if got != "50% off" {
		t.Fatalf("got %q", got)
	}
}

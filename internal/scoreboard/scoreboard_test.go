package scoreboard

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetGetOverwrites(t *testing.T) {
	b := New()
	b.Set("alice", "p1", 0.5)
	b.Set("alice", "p1", 1.0)

	v, ok := b.Get("alice", "p1")
	if !ok || v != 1.0 {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestGetMissingReturnsNotOk(t *testing.T) {
	b := New()
	if _, ok := b.Get("nobody", "none"); ok {
		t.Fatal("expected not ok")
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	b := New()
	b.Set("alice", "p1", 1.0)
	snap := b.Snapshot()
	b.Set("alice", "p1", 0.0)

	if snap[Key{User: "alice", Problem: "p1"}] != 1.0 {
		t.Fatal("snapshot mutated by later Set")
	}
}

func TestRenderIncludesUsersProblemsAndTotal(t *testing.T) {
	b := New()
	b.Set("alice", "p1", 1.0)
	b.Set("alice", "p2", 0.5)
	b.Set("bob", "p1", 0.0)

	var buf bytes.Buffer
	Render(&buf, b)
	out := buf.String()

	for _, want := range []string{"User/Problem", "p1", "p2", "Total", "alice", "bob", "1.5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

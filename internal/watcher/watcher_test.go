package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestWatcherDeliversAcceptedExtension(t *testing.T) {
	dir := t.TempDir()
	userDir := filepath.Join(dir, "alice")
	if err := os.Mkdir(userDir, 0o755); err != nil {
		t.Fatal(err)
	}

	seen := make(chan string, 1)
	w, err := New(dir, []string{".cpp"}, func(path string) { seen <- path }, logrus.NewEntry(logrus.New()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	target := filepath.Join(userDir, "p1.cpp")
	if err := os.WriteFile(target, []byte("int main(){}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case path := <-seen:
		if path != target {
			t.Fatalf("got %q, want %q", path, target)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watcher callback")
	}
}

func TestWatcherIgnoresUnacceptedExtension(t *testing.T) {
	dir := t.TempDir()

	seen := make(chan string, 1)
	w, err := New(dir, []string{".cpp"}, func(path string) { seen <- path }, logrus.NewEntry(logrus.New()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case path := <-seen:
		t.Fatalf("unexpected callback for %q", path)
	case <-time.After(700 * time.Millisecond):
	}
}

func TestWatcherDebouncesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()

	var calls []string
	done := make(chan struct{})
	w, err := New(dir, []string{".cpp"}, func(path string) {
		calls = append(calls, path)
		if len(calls) == 1 {
			close(done)
		}
	}, logrus.NewEntry(logrus.New()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	target := filepath.Join(dir, "p1.cpp")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first callback")
	}

	// Give the debounce window time to fully elapse and settle on one call.
	time.Sleep(700 * time.Millisecond)
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1 (debounced): %v", len(calls), calls)
	}
}

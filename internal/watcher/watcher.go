// Package watcher implements the submission watcher: it recursively
// monitors a submissions directory for create/modify events, debounces
// repeated events per path, and hands surviving paths to a single callback
// worker in FIFO order.
package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const debounceWindow = 500 * time.Millisecond

// Callback is invoked synchronously, on the single worker goroutine, once
// per surviving (debounced) path.
type Callback func(path string)

// Watcher recursively watches dir for new or modified submission files
// whose extension is in extensions, debounces them, and feeds them to cb
// one at a time. The zero value is not usable; construct with New.
type Watcher struct {
	dir        string
	extensions map[string]struct{}
	cb         Callback
	log        *logrus.Entry

	fw    *fsnotify.Watcher
	queue chan string

	debounceMu   sync.Mutex
	lastAccepted map[string]time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New constructs a Watcher over dir. extensions is the set of file
// extensions (including the leading dot, e.g. ".cpp") that count as
// submissions; every other change is ignored. This generalizes the
// original single-hardcoded-".cpp" filter to whatever extensions the
// active Configuration's compiler table declares, so the watcher works for
// every language the judge can compile, not only the one the original
// shipped with.
func New(dir string, extensions []string, cb Callback, log *logrus.Entry) (*Watcher, error) {
	if info, err := os.Stat(dir); err != nil {
		return nil, err
	} else if !info.IsDir() {
		return nil, ErrNotDirectory
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	extSet := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		extSet[e] = struct{}{}
	}

	return &Watcher{
		dir:            dir,
		extensions:     extSet,
		cb:             cb,
		log:            log,
		fw:           fw,
		queue:        make(chan string, 4096),
		lastAccepted: make(map[string]time.Time),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}, nil
}

// Start watches dir (and every subdirectory present at call time or created
// afterward) and launches the single worker goroutine that drains the
// queue and invokes the callback.
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.dir); err != nil {
		return err
	}

	go w.eventLoop()
	go w.worker()

	return nil
}

// Stop signals shutdown: the event loop stops enqueueing, the filesystem
// watch is closed, and the worker is joined after it finishes any in-flight
// callback.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.fw.Close()
	})
	<-w.doneCh
}

// Wait joins the worker goroutine without signaling shutdown.
func (w *Watcher) Wait() {
	<-w.doneCh
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.WithError(err).Warn("watcher error")
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		if ev.Op&fsnotify.Create != 0 {
			_ = w.addRecursive(ev.Name)
		}
		return
	}

	if !w.acceptedExtension(ev.Name) {
		return
	}

	w.debounce(ev.Name)
}

func (w *Watcher) acceptedExtension(path string) bool {
	_, ok := w.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// debounce is leading-edge: the first event of a burst for a given path is
// enqueued immediately; any further event for that path within
// debounceWindow of the last accepted one is silently dropped. This matches
// Listener::handleFileAction in the original implementation, which fires on
// the first event and ignores repeats for the next 500ms rather than
// waiting out a quiet period before firing.
func (w *Watcher) debounce(path string) {
	w.debounceMu.Lock()
	now := time.Now()
	if last, exists := w.lastAccepted[path]; exists && now.Sub(last) < debounceWindow {
		w.debounceMu.Unlock()
		return
	}
	w.lastAccepted[path] = now
	w.debounceMu.Unlock()

	select {
	case w.queue <- path:
	case <-w.stopCh:
	}
}

func (w *Watcher) worker() {
	defer close(w.doneCh)
	for {
		select {
		case path := <-w.queue:
			w.cb(path)
		case <-w.stopCh:
			// Shutdown cancels every pending pop: paths still queued are
			// dropped, and only an in-flight callback runs to completion.
			return
		}
	}
}

// ErrNotDirectory is returned by New when dir exists but is not a
// directory; a missing dir yields os.Stat's own error instead. Kept as a
// sentinel so callers can tell it apart from other setup failures.
var ErrNotDirectory = errors.New("watcher: not a directory")

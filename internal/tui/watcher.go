package tui

import (
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultWatchDebounce = 250 * time.Millisecond

// storeWatcher reports changes to the workspace's SQLite file (another `pantry` process, or a
// second TUI) so the list can reload. Bursts of writes collapse into one notification.
type storeWatcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	dir     string
	name    string
	log     *zap.Logger

	debounce time.Duration
	changes  chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// newStoreWatcher watches the directory of sqlitePath for changes to that file only. The -wal and
// -shm siblings change on every open and close, reads included. Committed writes reach the main
// file when the last connection checkpoints.
func newStoreWatcher(sqlitePath string, log *zap.Logger) (*storeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &storeWatcher{
		watcher:  w,
		dir:      filepath.Dir(sqlitePath),
		name:     filepath.Base(sqlitePath),
		log:      log,
		debounce: defaultWatchDebounce,
		changes:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

func (sw *storeWatcher) Start() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.running {
		return nil
	}
	if err := sw.watcher.Add(sw.dir); err != nil {
		return err
	}
	sw.running = true
	go sw.run()
	sw.log.Debug("store watcher started", zap.String("dir", sw.dir))
	return nil
}

// Stop ends the watch loop and closes Changes. It is safe to call more than once.
func (sw *storeWatcher) Stop() {
	sw.mu.Lock()
	if !sw.running {
		sw.mu.Unlock()
		_ = sw.watcher.Close()
		return
	}
	sw.running = false
	sw.mu.Unlock()

	close(sw.stopCh)
	<-sw.doneCh
	if err := sw.watcher.Close(); err != nil {
		sw.log.Warn("store watcher close failed", zap.Error(err))
	}
}

func (sw *storeWatcher) Changes() <-chan struct{} { return sw.changes }

func (sw *storeWatcher) run() {
	defer close(sw.doneCh)
	defer close(sw.changes)

	ticker := time.NewTicker(sw.debounce / 2)
	defer ticker.Stop()

	pending := false
	var last time.Time

	for {
		select {
		case <-sw.stopCh:
			return

		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !sw.relevant(ev) {
				continue
			}
			pending = true
			last = time.Now()

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Warn("store watcher error", zap.Error(err))

		case <-ticker.C:
			if !pending || time.Since(last) < sw.debounce {
				continue
			}
			pending = false
			select {
			case sw.changes <- struct{}{}:
			default:
				// A notification is already queued.
			}
		}
	}
}

func (sw *storeWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Base(ev.Name) != sw.name {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

type storeChangedMsg struct{}

// waitForStoreChange blocks on ch and turns the next notification into a message.
// A closed channel ends the subscription.
func waitForStoreChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

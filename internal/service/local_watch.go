package service

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/huddlechat/huddle/internal/db"
	"github.com/huddlechat/huddle/internal/types"
)

const watchDebounce = 200 * time.Millisecond

// externalWatcher notices commits by other local clients sharing the
// database file and replays what changed as live events. New rows and
// fresh edits past each scope's watermark are emitted; deletions by
// other processes are not detected and reconcile on the next fetch.
type externalWatcher struct {
	local   *Local
	watcher *fsnotify.Watcher
	stopCh  chan struct{}

	mu      sync.Mutex
	pending *time.Timer
}

func (l *Local) ensureWatcher() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watch != nil || l.path == "" {
		return
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		l.log.WithError(err).Warn("external watcher unavailable")
		return
	}
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		l.log.WithError(err).Warn("external watcher unavailable")
		_ = watcher.Close()
		return
	}
	w := &externalWatcher{local: l, watcher: watcher, stopCh: make(chan struct{})}
	l.watch = w
	go w.loop()
}

func (w *externalWatcher) stop() {
	close(w.stopCh)
	_ = w.watcher.Close()
}

func (w *externalWatcher) loop() {
	base := filepath.Base(w.local.path)
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(event.Name)
			if name != base && !strings.HasPrefix(name, base+"-") {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.local.log.WithError(err).Debug("external watcher error")
		}
	}
}

// schedule coalesces bursts of filesystem events into one resync.
func (w *externalWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(watchDebounce, w.resync)
}

func (w *externalWatcher) resync() {
	l := w.local

	l.mu.Lock()
	scopes := make(map[string]types.Scope)
	for _, sub := range l.subs {
		scopes[sub.scope.Key()] = sub.scope
	}
	marks := make(map[string]int64, len(scopes))
	for key := range scopes {
		marks[key] = l.watermarks[key]
	}
	l.mu.Unlock()

	for key, scope := range scopes {
		rows, err := db.GetMessagePage(l.conn, scope, nil, DefaultPageSize)
		if err != nil {
			l.log.WithError(err).Debug("resync query failed")
			continue
		}
		messages, err := l.assemble(rows, scope.Kind != types.ScopeThread)
		if err != nil {
			l.log.WithError(err).Debug("resync assemble failed")
			continue
		}
		mark := marks[key]
		// Walk oldest-first so created events arrive in creation order.
		for i := len(messages) - 1; i >= 0; i-- {
			msg := messages[i]
			if msg.CreatedAt > mark {
				l.emit(types.StoreEvent{Kind: types.EventCreated, Message: msg})
			} else if msg.EditedAt != nil && *msg.EditedAt > mark {
				l.emit(types.StoreEvent{Kind: types.EventUpdated, Message: msg})
			}
		}
	}
}

package changefeed

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rpggio/timeclock/internal/domain/entry"
)

const defaultDebounce = 250 * time.Millisecond

// FileWatcher turns filesystem writes to a store file into External changes
// on a Feed. Bursts of writes (a sqlite commit touches the db, -wal and -shm
// files) collapse into one notification.
type FileWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	feed     *Feed
	path     string
	base     string
	debounce time.Duration
	pending  time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	logger   *slog.Logger
}

// NewFileWatcher prepares a watcher for the store file at path. It watches the
// parent directory so the file may be replaced or created later.
func NewFileWatcher(path string, feed *Feed, debounce time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	if feed == nil {
		return nil, fmt.Errorf("file watcher requires a feed")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileWatcher{
		watcher:  w,
		feed:     feed,
		path:     path,
		base:     filepath.Base(path),
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   logger,
	}, nil
}

// Start begins watching. It is non-blocking.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	dir := filepath.Dir(fw.path)
	if err := fw.watcher.Add(dir); err != nil {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	fw.logger.Debug("watching store file", "path", fw.path)

	go fw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its loop to exit.
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		_ = fw.watcher.Close()
		return
	}
	fw.running = false
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.doneCh

	if err := fw.watcher.Close(); err != nil {
		fw.logger.Error("closing file watcher", "error", err)
	}
}

func (fw *FileWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)

	ticker := time.NewTicker(fw.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopCh:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", "error", err)
		case now := <-ticker.C:
			fw.flush(now)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if !strings.HasPrefix(filepath.Base(event.Name), fw.base) {
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	fw.mu.Lock()
	fw.pending = time.Now()
	fw.mu.Unlock()
}

func (fw *FileWatcher) flush(now time.Time) {
	fw.mu.Lock()
	if fw.pending.IsZero() || now.Sub(fw.pending) < fw.debounce {
		fw.mu.Unlock()
		return
	}
	fw.pending = time.Time{}
	fw.mu.Unlock()

	fw.logger.Debug("store file changed externally", "path", fw.path)
	fw.feed.Publish(entry.Change{External: true})
}

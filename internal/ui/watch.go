package ui

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// storyWatcher reports changes to one story file. It watches the file's
// directory because editors often save by writing a new file and renaming
// it over the old one.
type storyWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	log      *zap.Logger
	debounce time.Duration
	changes  chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

func newStoryWatcher(path string, log *zap.Logger) (*storyWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &storyWatcher{
		watcher:  w,
		path:     abs,
		log:      log,
		debounce: 200 * time.Millisecond,
		changes:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Changes delivers one value per burst of writes to the story file.
func (sw *storyWatcher) Changes() <-chan struct{} {
	return sw.changes
}

func (sw *storyWatcher) Start(ctx context.Context) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.running {
		return nil
	}
	if err := sw.watcher.Add(filepath.Dir(sw.path)); err != nil {
		return err
	}
	sw.running = true
	go sw.run(ctx)
	sw.log.Info("watching story", zap.String("path", sw.path))
	return nil
}

// Stop ends the event loop and releases the watcher. It is safe to call
// more than once, and on a watcher that never started.
func (sw *storyWatcher) Stop() {
	sw.mu.Lock()
	running := sw.running
	sw.running = false
	sw.mu.Unlock()

	if running {
		close(sw.stopCh)
		<-sw.doneCh
	}
	if err := sw.watcher.Close(); err != nil {
		sw.log.Warn("closing story watcher", zap.Error(err))
	}
}

func (sw *storyWatcher) run(ctx context.Context) {
	defer close(sw.doneCh)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.stopCh:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != sw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			sw.log.Debug("story file event", zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(sw.debounce)
			} else {
				timer.Reset(sw.debounce)
			}
			timerCh = timer.C
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Warn("story watcher", zap.Error(err))
		case <-timerCh:
			timerCh = nil
			select {
			case sw.changes <- struct{}{}:
			default:
			}
		}
	}
}

package source

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/entryship/internal/ports"
)

// FileWatcher reports writes to one file. It watches the parent directory so
// that a file which is created or replaced after the watch started is seen.
type FileWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan struct{}
	logger  ports.Logger

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewFileWatcher starts watching path.
func NewFileWatcher(path string, logger ports.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &FileWatcher{
		path:    abs,
		watcher: watcher,
		changes: make(chan struct{}, 1),
		logger:  logger,
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Changes delivers a value after the file was written or created. Events that
// arrive before the previous value was received are coalesced. The channel
// is never closed.
func (w *FileWatcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *FileWatcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", ports.Err(err), ports.String("path", w.path))
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *FileWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

package server

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/logger"
)

// fileWatcher reports changes to one file. The parent directory is watched
// so editors that replace the file by rename are still seen.
type fileWatcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *zap.SugaredLogger

	mu    sync.Mutex
	timer *time.Timer
}

func newFileWatcher(path string, debounce time.Duration, log *zap.SugaredLogger) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "watch %s", path)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", filepath.Dir(abs))
	}
	return &fileWatcher{
		path:     abs,
		debounce: debounce,
		watcher:  w,
		logger:   logger.OrNop(log),
	}, nil
}

// run calls reload after each burst of changes until ctx is done
func (fw *fileWatcher) run(ctx context.Context, reload func()) error {
	defer func() {
		fw.mu.Lock()
		if fw.timer != nil {
			fw.timer.Stop()
		}
		fw.mu.Unlock()
		fw.watcher.Close()
	}()

	fw.logger.Infow("Watching file", logger.FieldFile, fw.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			fw.logger.Debugw("File changed", logger.FieldFile, event.Name, "op", event.Op.String())
			fw.schedule(ctx, reload)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

func (fw *fileWatcher) schedule(ctx context.Context, reload func()) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		reload()
	})
}

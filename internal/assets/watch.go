package assets

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to a set of files under a directory on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// Watch starts watching the named files (relative to root, in fs.FS form) and calls onChange with the name of a
// file each time it is written or replaced. onChange runs on the Watcher's own goroutine.
func Watch(root string, names []string, logger *slog.Logger, onChange func(name string)) (*Watcher, error) {

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	byPath := map[string]string{}
	dirs := map[string]bool{}

	for _, name := range names {
		clean, err := CleanPath(name)
		if err != nil {
			fw.Close()
			return nil, err
		}
		full := filepath.Join(root, filepath.FromSlash(clean))
		byPath[full] = name
		dirs[filepath.Dir(full)] = true
	}

	// Editors often save by replacing the file, so the directory is watched rather than the file itself.
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}

	w := &Watcher{watcher: fw, done: make(chan struct{})}

	go func() {
		defer close(w.done)
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if name, ok := byPath[filepath.Clean(event.Name)]; ok {
					logger.Debug("asset changed", "path", name, "op", event.Op.String())
					onChange(name)
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Error("asset watcher", "err", err)
			}
		}
	}()

	return w, nil

}

// Close stops the Watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

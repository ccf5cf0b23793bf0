// Package assets loads textures and fonts in the background. Results are handed back through callbacks that
// only run when the owner calls Loader.Dispatch, so they always run on the owner's goroutine (for the game,
// that's the update loop).
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned when starting a load on a Loader that has been closed.
var ErrClosed = errors.New("loader closed")

// Progress describes how much of a file has been read. Total is -1 when the size isn't known up front.
type Progress struct {
	Path          string
	Loaded, Total int64
}

// Callbacks receive the outcome of a load. Exactly one of OnLoad and OnError is called, unless the Loader is
// closed first, in which case neither is. Any of them may be nil.
type Callbacks[T any] struct {
	OnLoad     func(T)
	OnProgress func(Progress)
	OnError    func(error)
}

// Loader reads files from a file system in background goroutines.
type Loader struct {
	fsys   fs.FS
	logger *slog.Logger

	// Textures larger than this on either side are scaled down to fit; 0 disables scaling.
	MaxTextureSize int

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu      sync.Mutex
	queue   []func()
	pending int
	closed  bool
}

// NewLoader returns a Loader reading from fsys. A nil logger discards log output.
func NewLoader(fsys fs.FS, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		fsys:   fsys,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// load reads a file in the background, decodes it, and queues the matching callback.
func load[T any](loader *Loader, kind, name string, cb Callbacks[T], decode func(data []byte) (T, error)) error {

	loader.mu.Lock()
	if loader.closed {
		loader.mu.Unlock()
		return ErrClosed
	}
	loader.pending++
	loader.mu.Unlock()

	loader.logger.Debug("loading", "kind", kind, "path", name)

	loader.group.Go(func() error {

		value, err := readAndDecode(loader, name, cb.OnProgress, decode)

		if err != nil {
			err = fmt.Errorf("loading %s %q: %w", kind, name, err)
		}

		loader.enqueue(func() {
			loader.mu.Lock()
			loader.pending--
			loader.mu.Unlock()
			if err != nil {
				if cb.OnError != nil {
					cb.OnError(err)
				}
				return
			}
			if cb.OnLoad != nil {
				cb.OnLoad(value)
			}
		})

		// Failures are reported through callbacks; the group is only used for joining.
		return nil

	})

	return nil

}

func readAndDecode[T any](loader *Loader, name string, onProgress func(Progress), decode func([]byte) (T, error)) (T, error) {
	var zero T
	data, err := loader.read(name, onProgress)
	if err != nil {
		return zero, err
	}
	return decode(data)
}

func (loader *Loader) read(name string, onProgress func(Progress)) ([]byte, error) {

	clean, err := CleanPath(name)
	if err != nil {
		return nil, err
	}

	f, err := loader.fsys.Open(clean)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	total := int64(-1)
	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
		total = info.Size()
	}

	reader := &progressReader{
		ctx:    loader.ctx,
		reader: f,
		total:  total,
	}

	if onProgress != nil {
		reader.report = func(loaded, total int64) {
			p := Progress{Path: name, Loaded: loaded, Total: total}
			loader.enqueue(func() { onProgress(p) })
		}
	}

	return io.ReadAll(reader)

}

func (loader *Loader) enqueue(fn func()) {
	loader.mu.Lock()
	defer loader.mu.Unlock()
	if loader.closed {
		return
	}
	loader.queue = append(loader.queue, fn)
}

// Dispatch runs the callbacks of loads that have progressed or finished since the last call, in the order the
// events happened, and returns how many ran. A callback that closes the Loader stops the rest from running.
func (loader *Loader) Dispatch() int {

	loader.mu.Lock()
	queue := loader.queue
	loader.queue = nil
	loader.mu.Unlock()

	ran := 0

	for _, fn := range queue {
		if loader.Closed() {
			break
		}
		fn()
		ran++
	}

	return ran

}

// Pending returns the number of loads whose final callback hasn't been dispatched yet.
func (loader *Loader) Pending() int {
	loader.mu.Lock()
	defer loader.mu.Unlock()
	return loader.pending
}

// Wait blocks until every background read has finished and queued its result. It doesn't dispatch anything.
func (loader *Loader) Wait() {
	_ = loader.group.Wait()
}

// Close cancels loads in flight and drops queued callbacks; no callback of this Loader runs afterwards. Close
// doesn't wait for the background goroutines to exit.
func (loader *Loader) Close() {
	loader.mu.Lock()
	loader.closed = true
	loader.queue = nil
	loader.pending = 0
	loader.mu.Unlock()
	loader.cancel()
}

// Closed returns true once Close has been called.
func (loader *Loader) Closed() bool {
	loader.mu.Lock()
	defer loader.mu.Unlock()
	return loader.closed
}

// CleanPath turns a web-style asset path into a path valid for fs.FS. Leading "/" and "./" are dropped, so
// "/fonts/a.json" and "./fonts/a.json" both name "fonts/a.json".
func CleanPath(name string) (string, error) {
	clean := strings.TrimLeft(name, "/")
	clean = path.Clean(clean)
	if clean == "." || !fs.ValidPath(clean) {
		return "", fmt.Errorf("asset path %q: %w", name, fs.ErrInvalid)
	}
	return clean, nil
}

type progressReader struct {
	ctx    context.Context
	reader io.Reader
	loaded int64
	total  int64
	report func(loaded, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.reader.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.report != nil {
			p.report(p.loaded, p.total)
		}
	}
	return n, err
}

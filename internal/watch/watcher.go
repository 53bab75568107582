// Package watch processes documents dropped into an inbox directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Veraticus/tranche/internal/common"
	"github.com/Veraticus/tranche/internal/engine"
	"github.com/Veraticus/tranche/internal/service"
	"github.com/Veraticus/tranche/internal/textextract"
)

// DefaultSettle is how long a file must go without writes before it is read.
const DefaultSettle = 2 * time.Second

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// Processor extracts one file. *engine.Engine satisfies it.
type Processor interface {
	ProcessFile(ctx context.Context, src service.TextSource, path string, opts engine.BatchOptions) engine.FileResult
}

// Options configures a Watcher.
type Options struct {
	Accept          func(path string) bool // Defaults to textextract.Supported
	Dir             string
	Batch           engine.BatchOptions // Sink, Type and OnResult are honoured
	Settle          time.Duration
	ProcessExisting bool // Also process files already in Dir at startup
}

// Watcher feeds settled inbox files to a Processor one at a time.
type Watcher struct {
	proc    Processor
	src     service.TextSource
	fsw     *fsnotify.Watcher
	pending map[string]*time.Timer
	opts    Options
	mu      sync.Mutex
}

// New creates a watcher over opts.Dir. Events are buffered from the moment
// New returns, so files written before Run starts are not missed.
func New(proc Processor, src service.TextSource, opts Options) (*Watcher, error) {
	if proc == nil || src == nil {
		return nil, errors.New("processor and text source are required")
	}
	info, err := os.Stat(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory: %s is not a directory", opts.Dir)
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.Accept == nil {
		opts.Accept = textextract.Supported
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	if err := fsw.Add(opts.Dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", opts.Dir, err)
	}

	return &Watcher{
		proc:    proc,
		src:     src,
		fsw:     fsw,
		opts:    opts,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run watches until ctx is cancelled. The underlying watcher is closed on
// return, so a Watcher runs once.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	ready := make(chan string, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.processReady(ctx, ready)
	}()

	common.LogInfo(ctx, "Watching inbox", common.Fields{"dir": w.opts.Dir, "settle": w.opts.Settle})

	if w.opts.ProcessExisting {
		if err := w.enqueueExisting(ctx, ready); err != nil {
			common.LogWarn(ctx, err, "Failed to scan existing files", common.Fields{"dir": w.opts.Dir})
		}
	}

	w.watchEvents(ctx, ready)

	w.mu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	wg.Wait()
	return nil
}

// Close releases the underlying watcher without running it.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) watchEvents(ctx context.Context, ready chan<- string) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event, ready)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			common.LogWarn(ctx, err, "Filesystem watcher error", nil)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event, ready chan<- string) {
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.cancel(event.Name)
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if w.accept(event.Name) {
			w.schedule(ctx, event.Name, ready)
		}
	}
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduleLocked(ctx, path, ready)
}

// scheduleLocked requires w.mu. A timer that already fired may have its
// callback blocked on w.mu, so it is replaced rather than reset; the stale
// callback sees it no longer owns the entry and drops out.
func (w *Watcher) scheduleLocked(ctx context.Context, path string, ready chan<- string) {
	if timer, ok := w.pending[path]; ok && timer.Stop() {
		timer.Reset(w.opts.Settle)
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(w.opts.Settle, func() {
		w.mu.Lock()
		if w.pending[path] != timer {
			w.mu.Unlock()
			return
		}
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
	w.pending[path] = timer
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
}

// accept skips directories, hidden files and editor lock files.
func (w *Watcher) accept(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	if !w.opts.Accept(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (w *Watcher) enqueueExisting(ctx context.Context, ready chan<- string) error {
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		return err
	}

	var paths []string
	for _, entry := range entries {
		path := filepath.Join(w.opts.Dir, entry.Name())
		if w.accept(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	for _, path := range paths {
		select {
		case ready <- path:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (w *Watcher) processReady(ctx context.Context, ready <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-ready:
			res := w.proc.ProcessFile(ctx, w.src, path, w.opts.Batch)
			logResult(ctx, res)
			if w.opts.Batch.OnResult != nil {
				w.opts.Batch.OnResult(res)
			}
		}
	}
}

func logResult(ctx context.Context, res engine.FileResult) {
	if res.Err != nil {
		common.LogError(ctx, res.Err, "Failed to process inbox file", common.Fields{"path": res.Path})
		return
	}
	common.LogInfo(ctx, "Processed inbox file", common.Fields{
		"path":         res.Path,
		"type":         res.Result.Classification.Type,
		"confidence":   res.Result.ConfidenceScore(),
		"saved":        res.Saved,
		"needs_review": res.NeedsReview,
		"duration":     res.Duration,
	})
}

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tranche/internal/engine"
	"github.com/Veraticus/tranche/internal/service"
	"github.com/Veraticus/tranche/internal/testutil"
	"github.com/Veraticus/tranche/internal/textextract"
)

const waitTimeout = 5 * time.Second

// runWatcher starts w and returns a stop function that waits for Run.
func runWatcher(t *testing.T, w *Watcher) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(waitTimeout):
				t.Fatal("watcher did not stop")
			}
		})
	}
	t.Cleanup(stop)
	return stop
}

func waitResult(t *testing.T, results <-chan engine.FileResult) engine.FileResult {
	t.Helper()
	select {
	case res := <-results:
		return res
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for inbox file to be processed")
		return engine.FileResult{}
	}
}

func TestWatcherProcessesNewFiles(t *testing.T) {
	dir := t.TempDir()
	db := testutil.SetupTestDB(t)
	results := make(chan engine.FileResult, 4)

	w, err := New(engine.New(nil), textextract.New(), Options{
		Dir:    dir,
		Settle: 50 * time.Millisecond,
		Batch: engine.BatchOptions{
			Sink:            db.Storage,
			ReviewThreshold: 50,
			OnResult:        func(r engine.FileResult) { results <- r },
		},
	})
	require.NoError(t, err)
	stop := runWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.xlsx"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte(testutil.NewIssueProspectus), 0600))
	path := filepath.Join(dir, "prospectus.txt")
	require.NoError(t, os.WriteFile(path, []byte(testutil.NewIssueProspectus), 0600))

	res := waitResult(t, results)
	require.NoError(t, res.Err)
	assert.Equal(t, path, res.Path)
	assert.True(t, res.Saved)
	assert.False(t, res.NeedsReview)
	require.NotNil(t, res.Result.Deal)

	select {
	case extra := <-results:
		t.Fatalf("unexpected result for %s", extra.Path)
	case <-time.After(300 * time.Millisecond):
	}

	stop()
	deals := db.MustListDeals()
	require.Len(t, deals, 1)
	assert.Equal(t, path, deals[0].SourceIdentifier)
}

func TestWatcherProcessExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.md"), []byte(testutil.SurveillanceReport), 0600))
	results := make(chan engine.FileResult, 4)

	w, err := New(engine.New(nil), textextract.New(), Options{
		Dir:             dir,
		Settle:          time.Hour,
		ProcessExisting: true,
		Batch:           engine.BatchOptions{OnResult: func(r engine.FileResult) { results <- r }},
	})
	require.NoError(t, err)
	runWatcher(t, w)

	res := waitResult(t, results)
	require.NoError(t, res.Err)
	require.NotNil(t, res.Result.Report)
	assert.False(t, res.Saved)
}

// countingProcessor records the paths it is asked to process.
type countingProcessor struct {
	results chan string
}

func (p *countingProcessor) ProcessFile(_ context.Context, _ service.TextSource, path string, _ engine.BatchOptions) engine.FileResult {
	p.results <- path
	return engine.FileResult{Path: path}
}

func TestRescheduleAfterTimerFiredSendsOnce(t *testing.T) {
	proc := &countingProcessor{results: make(chan string, 1)}
	w, err := New(proc, textextract.New(), Options{Dir: t.TempDir(), Settle: 10 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan string, 4)
	path := filepath.Join(w.opts.Dir, "deal.txt")

	// The first timer fires while the lock is held, so its callback is
	// parked on the mutex when the second write arrives.
	w.mu.Lock()
	w.scheduleLocked(ctx, path, ready)
	time.Sleep(50 * time.Millisecond)
	w.scheduleLocked(ctx, path, ready)
	w.mu.Unlock()

	select {
	case got := <-ready:
		assert.Equal(t, path, got)
	case <-time.After(waitTimeout):
		t.Fatal("settled path was never sent")
	}

	select {
	case got := <-ready:
		t.Fatalf("path sent twice: %s", got)
	case <-time.After(200 * time.Millisecond):
	}

	w.mu.Lock()
	assert.Empty(t, w.pending)
	w.mu.Unlock()
}

func TestWatcherSettlesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()
	proc := &countingProcessor{results: make(chan string, 8)}

	w, err := New(proc, textextract.New(), Options{Dir: dir, Settle: 200 * time.Millisecond})
	require.NoError(t, err)
	runWatcher(t, w)

	path := filepath.Join(dir, "deal.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.WriteString("Class A Notes\n")
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	select {
	case got := <-proc.results:
		assert.Equal(t, path, got)
	case <-time.After(waitTimeout):
		t.Fatal("file was never processed")
	}

	select {
	case got := <-proc.results:
		t.Fatalf("file processed twice: %s", got)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherDropsRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	proc := &countingProcessor{results: make(chan string, 8)}

	w, err := New(proc, textextract.New(), Options{Dir: dir, Settle: 300 * time.Millisecond})
	require.NoError(t, err)
	runWatcher(t, w)

	path := filepath.Join(dir, "partial.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-"), 0600))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.Remove(path))

	select {
	case got := <-proc.results:
		t.Fatalf("removed file was processed: %s", got)
	case <-time.After(700 * time.Millisecond):
	}
}

func TestNewErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0600))

	tests := []struct {
		proc Processor
		src  service.TextSource
		name string
		dir  string
	}{
		{name: "missing processor", src: textextract.New(), dir: dir},
		{name: "missing source", proc: engine.New(nil), dir: dir},
		{name: "missing directory", proc: engine.New(nil), src: textextract.New(), dir: filepath.Join(dir, "nope")},
		{name: "not a directory", proc: engine.New(nil), src: textextract.New(), dir: file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.proc, tt.src, Options{Dir: tt.dir})
			assert.Error(t, err)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	w, err := New(engine.New(nil), textextract.New(), Options{Dir: t.TempDir()})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	assert.Equal(t, DefaultSettle, w.opts.Settle)
	assert.True(t, w.opts.Accept("deal.pdf"))
	assert.False(t, w.opts.Accept("deal.xlsx"))
}

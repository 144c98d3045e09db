// Package watcher keeps the engine's knowledge base in sync with corpus
// directories of reference documents. New and changed files are ingested
// automatically; a content-hash registry prevents re-ingesting unchanged
// files, since indexed chunks cannot be replaced in place.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/medioracle/medirag/internal/models"
)

const defaultDebounce = 400 * time.Millisecond

// Ingestor ingests a reference document from disk. *rag.Engine satisfies it.
type Ingestor interface {
	IngestFile(ctx context.Context, path string) (*models.IngestResult, error)
}

// Watcher watches corpus directories and feeds matching documents to the
// ingestor. File removals only stop future ingests: already-indexed chunks
// remain until the index is cleared.
type Watcher struct {
	ingestor   Ingestor
	roots      []string
	extensions []string
	recursive  bool
	debounce   time.Duration
	logger     *zap.Logger

	fsw      *fsnotify.Watcher
	ctx      context.Context
	mu       sync.Mutex
	pending  map[string]*time.Timer
	seen     map[string]string // path -> content hash at last successful ingest
	started  bool
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithExtensions filters which files are ingested (empty = all files).
func WithExtensions(exts []string) Option {
	return func(w *Watcher) { w.extensions = exts }
}

// WithRecursive controls whether subdirectories of each root are watched.
func WithRecursive(recursive bool) Option {
	return func(w *Watcher) { w.recursive = recursive }
}

// WithDebounce overrides the write-event settle delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a watcher over the given corpus roots.
func New(ingestor Ingestor, roots []string, opts ...Option) *Watcher {
	w := &Watcher{
		ingestor:  ingestor,
		roots:     roots,
		recursive: true,
		debounce:  defaultDebounce,
		logger:    zap.NewNop(),
		pending:   make(map[string]*time.Timer),
		seen:      make(map[string]string),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. Missing roots are created. The watcher runs until
// ctx is cancelled or Stop is called. Call Sync afterwards to ingest files
// already present.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	w.ctx = ctx
	w.started = true
	w.logger.Debug("corpus watcher starting",
		zap.Strings("roots", w.roots),
		zap.Strings("extensions", w.extensions),
		zap.Bool("recursive", w.recursive))
	for _, root := range w.roots {
		if err := w.addRootLocked(root); err != nil {
			_ = w.fsw.Close()
			w.fsw = nil
			w.started = false
			w.mu.Unlock()
			return err
		}
	}
	w.mu.Unlock()
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	w.mu.Lock()
	fsw := w.fsw
	w.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn("corpus watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if !w.underRoot(path) {
		return
	}
	w.logger.Debug("corpus event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch ev.Op {
	case fsnotify.Create, fsnotify.Write:
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
		if w.matchExtension(path) {
			w.scheduleIngest(path)
		}
	case fsnotify.Remove:
		w.cancelPending(path)
		if w.matchExtension(path) {
			w.mu.Lock()
			_, wasIngested := w.seen[path]
			delete(w.seen, path)
			w.mu.Unlock()
			if wasIngested {
				w.logger.Info("corpus document removed; its indexed chunks remain until the index is cleared",
					zap.String("path", path))
			}
		}
	}
}

// handleNewDirectory watches a directory that appeared inside a root (for
// example a folder copied into the corpus) and ingests its contents.
func (w *Watcher) handleNewDirectory(dirPath string) {
	w.mu.Lock()
	recursive := w.recursive
	fsw := w.fsw
	w.mu.Unlock()
	if fsw == nil {
		return
	}

	if recursive {
		_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if err := fsw.Add(path); err != nil {
					w.logger.Warn("failed to watch new corpus directory", zap.String("path", path), zap.Error(err))
				}
			}
			return nil
		})
	} else if err := fsw.Add(dirPath); err != nil {
		w.logger.Warn("failed to watch new corpus directory", zap.String("path", dirPath), zap.Error(err))
	}

	w.syncDirectory(dirPath)
}

func (w *Watcher) underRoot(path string) bool {
	w.mu.Lock()
	roots := append([]string(nil), w.roots...)
	w.mu.Unlock()
	clean := filepath.Clean(path)
	for _, root := range roots {
		rootClean := filepath.Clean(root)
		if rootClean == clean || inDir(rootClean, clean) {
			return true
		}
	}
	return false
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Watcher) matchExtension(path string) bool {
	return matchExtension(path, w.extensions)
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

func (w *Watcher) scheduleIngest(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.ingest(path)
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

// ingest feeds one file to the ingestor unless its content hash matches the
// last successful ingest of the same path.
func (w *Watcher) ingest(path string) {
	sum, err := hashFile(path)
	if err != nil {
		w.logger.Warn("corpus file unreadable", zap.String("path", path), zap.Error(err))
		return
	}

	w.mu.Lock()
	prev, known := w.seen[path]
	ctx := w.ctx
	w.mu.Unlock()
	if known && prev == sum {
		w.logger.Debug("corpus file unchanged, skipping", zap.String("path", path))
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := w.ingestor.IngestFile(ctx, path)
	if err != nil {
		w.logger.Warn("corpus ingest failed", zap.String("path", path), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.seen[path] = sum
	w.mu.Unlock()
	w.logger.Info("corpus document ingested",
		zap.String("path", path),
		zap.String("source", result.SourceName),
		zap.Int("chunks", result.ChunksCreated))
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Sync ingests every matching file currently present under the watched
// roots. Unchanged files are skipped via the hash registry, so Sync is safe
// to call repeatedly. Works with or without Start.
func (w *Watcher) Sync() {
	w.mu.Lock()
	roots := append([]string(nil), w.roots...)
	w.mu.Unlock()
	for _, root := range roots {
		w.syncDirectory(root)
	}
}

func (w *Watcher) syncDirectory(root string) {
	w.mu.Lock()
	exts := append([]string(nil), w.extensions...)
	w.mu.Unlock()
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if matchExtension(path, exts) {
			w.ingest(path)
		}
		return nil
	})
}

func (w *Watcher) addRootLocked(root string) error {
	root = filepath.Clean(root)
	if _, err := os.Stat(root); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(root, 0755); err != nil {
			return err
		}
	}
	if !w.recursive {
		return w.fsw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.fsw == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	_ = w.fsw.Close()
	w.fsw = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}

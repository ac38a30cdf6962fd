package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"vidconv/internal/logging"
)

// ErrAlreadyRunning is returned when another process holds the watch lock.
var ErrAlreadyRunning = errors.New("watcher already running")

// Handler processes a settled inbox file.
type Handler func(ctx context.Context, path string) error

// Options configures a Watcher.
type Options struct {
	Dir        string
	Extensions []string
	Settle     time.Duration
	LockPath   string
}

// Watcher dispatches settled inbox files to a Handler.
type Watcher struct {
	opts    Options
	exts    map[string]struct{}
	handler Handler
	logger  *slog.Logger
	lock    *flock.Flock

	mu      sync.Mutex
	pending map[string]*pendingFile
}

type pendingFile struct {
	timer *time.Timer
	due   time.Time
}

// New constructs a Watcher. Run starts it.
func New(opts Options, handler Handler, logger *slog.Logger) (*Watcher, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, errors.New("watch directory is required")
	}
	if handler == nil {
		return nil, errors.New("watch handler is required")
	}
	if strings.TrimSpace(opts.LockPath) == "" {
		opts.LockPath = filepath.Join(opts.Dir, ".vidconv-watch.lock")
	}
	if opts.Settle <= 0 {
		opts.Settle = time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &Watcher{
		opts:    opts,
		exts:    exts,
		handler: handler,
		logger:  logging.NewComponentLogger(logger, "watch"),
		lock:    flock.New(opts.LockPath),
		pending: make(map[string]*pendingFile),
	}, nil
}

// Run watches the inbox until ctx is cancelled or a component fails.
func (w *Watcher) Run(ctx context.Context) error {
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn("failed to release watch lock", logging.Error(err))
		}
	}()

	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := inner.Add(w.opts.Dir); err != nil {
		inner.Close()
		return fmt.Errorf("watch %s: %w", w.opts.Dir, err)
	}

	w.logger.Info("watching inbox",
		logging.String("dir", w.opts.Dir),
		logging.Duration("settle", w.opts.Settle),
		logging.String(logging.FieldEventType, "watch_started"),
	)

	ready := make(chan string)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		w.stopPending()
		return inner.Close()
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-inner.Events:
				if !ok {
					return nil
				}
				w.observe(ctx, event, ready)
			case err, ok := <-inner.Errors:
				if !ok {
					return nil
				}
				return fmt.Errorf("fsnotify: %w", err)
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case path := <-ready:
				w.dispatch(ctx, path)
			}
		}
	})

	err = g.Wait()
	w.logger.Info("inbox watcher stopped", logging.String(logging.FieldEventType, "watch_stopped"))
	return err
}

func (w *Watcher) observe(ctx context.Context, event fsnotify.Event, ready chan<- string) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.matches(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	due := time.Now().Add(w.opts.Settle)
	if entry, ok := w.pending[event.Name]; ok {
		entry.due = due
		entry.timer.Reset(w.opts.Settle)
		return
	}
	path := event.Name
	entry := &pendingFile{due: due}
	entry.timer = time.AfterFunc(w.opts.Settle, func() {
		w.mu.Lock()
		if time.Now().Before(entry.due) {
			// Rescheduled by a later write.
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
	w.pending[path] = entry
}

func (w *Watcher) dispatch(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		w.logger.Debug("skipping vanished inbox entry", logging.String("path", path))
		return
	}
	w.logger.Info("inbox file settled",
		logging.String("path", path),
		logging.Int64("size_bytes", info.Size()),
		logging.String(logging.FieldEventType, "inbox_file_ready"),
	)
	if err := w.handler(ctx, path); err != nil {
		logging.WarnWithContext(w.logger, "inbox conversion failed", "inbox_conversion_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the source file and the conversion log"),
		)
	}
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, entry := range w.pending {
		entry.timer.Stop()
		delete(w.pending, path)
	}
}

// matches reports whether path names a visible file with a watched extension.
func (w *Watcher) matches(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if len(w.exts) == 0 {
		return true
	}
	_, ok := w.exts[strings.ToLower(filepath.Ext(base))]
	return ok
}

package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Root        string        // inbox directory, watched recursively
	InitialScan bool          // emit manifests already present at startup
	Debounce    time.Duration // coalesce rapid create/write bursts
}

// Watcher feeds manifests that appear under an inbox directory to an Ingestor.
type Watcher struct {
	cfg      WatchConfig
	ingestor *Ingestor
	logger   *slog.Logger
}

func NewWatcher(cfg WatchConfig, ing *Ingestor, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{cfg: cfg, ingestor: ing, logger: logger}
}

// Run blocks until ctx is done, ingesting manifests one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	paths, errs, err := StartWatcher(ctx, w.cfg, w.logger)
	if err != nil {
		return err
	}
	w.logger.Info("ingest.watch.start", "root", w.cfg.Root, "debounce", w.cfg.Debounce, "initial_scan", w.cfg.InitialScan)

	for {
		select {
		case p, ok := <-paths:
			if !ok {
				w.logger.Info("ingest.watch.stop", "root", w.cfg.Root)
				return nil
			}
			if _, err := w.ingestor.IngestPath(ctx, p); err != nil && errors.Is(err, fs.ErrNotExist) {
				w.logger.Debug("ingest.watch.gone", "path", p)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Warn("ingest.watch.error", "error", err)
		}
	}
}

// StartWatcher watches cfg.Root and emits manifest paths once they have been quiet for cfg.Debounce.
// Both channels are closed when ctx is done.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Root == "" {
		return nil, nil, errors.New("no inbox root provided")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("ingest.watch.create_failed", "error", err)
		return nil, nil, err
	}

	var initial []string
	if err := addTree(w, cfg.Root, func(p string) {
		if cfg.InitialScan {
			initial = append(initial, p)
		}
	}); err != nil {
		logger.Error("ingest.watch.add_failed", "root", cfg.Root, "error", err)
		_ = w.Close()
		return nil, nil, err
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("ingest.watch.close_failed", "error", err)
			}
		}()

		pending := make(map[string]struct{})
		for _, p := range initial {
			pending[p] = struct{}{}
		}
		flush := func() bool {
			for p := range pending {
				select {
				case evCh <- p:
				case <-ctx.Done():
					return false
				}
				delete(pending, p)
			}
			return true
		}
		if !flush() {
			return
		}

		var (
			timer *time.Timer
			fire  <-chan time.Time
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
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Has(fsnotify.Create) && isDir(e.Name) && !IsHidden(e.Name) {
					// manifests written before the new directory was watched are picked up here
					if err := addTree(w, e.Name, func(p string) { pending[p] = struct{}{} }); err != nil {
						logger.Warn("ingest.watch.add_failed", "path", e.Name, "error", err)
					}
				}
				if IsManifest(e.Name) && (e.Has(fsnotify.Create) || e.Has(fsnotify.Write)) {
					pending[e.Name] = struct{}{}
				}
				if len(pending) == 0 {
					continue
				}
				if cfg.Debounce <= 0 {
					if !flush() {
						return
					}
					continue
				}
				if timer == nil {
					timer = time.NewTimer(cfg.Debounce)
				} else {
					timer.Reset(cfg.Debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				if !flush() {
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watch.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

// addTree watches root and every visible directory below it, reporting manifests it passes.
func addTree(w *fsnotify.Watcher, root string, found func(string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return w.Add(path)
		}
		if IsManifest(path) {
			found(path)
		}
		return nil
	})
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

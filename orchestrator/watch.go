package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	cfg "github.com/maastricht-university/meeting-clarity/config"
)

// DefaultSettle is how long a new file's size must stay unchanged before it
// is picked up.
const DefaultSettle = 2 * time.Second

// Watcher analyzes recordings dropped into a directory.
type Watcher struct {
	analyzer Analyzer
	cfg      cfg.Watch
	settle   time.Duration
}

func NewWatcher(a Analyzer, w cfg.Watch) *Watcher {
	if w.Concurrency < 1 {
		w.Concurrency = 1
	}
	return &Watcher{analyzer: a, cfg: w, settle: DefaultSettle}
}

// WithSettle overrides DefaultSettle.
func (w *Watcher) WithSettle(d time.Duration) *Watcher {
	w.settle = d
	return w
}

// Run blocks until ctx is done. Failed analyses are logged and do not stop
// the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if w.cfg.Dir == "" {
		return fmt.Errorf("watch: no directory configured")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}
	log.WithField("dir", w.cfg.Dir).Info("watching for recordings")

	var (
		wg   sync.WaitGroup
		sem  = make(chan struct{}, w.cfg.Concurrency)
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			// Files moved into the directory arrive as Create. Rename names
			// the path that went away.
			if !ev.Has(fsnotify.Create) {
				continue
			}
			if !hasExtension(ev.Name, w.cfg.Extensions) {
				continue
			}
			mu.Lock()
			dup := seen[ev.Name]
			seen[ev.Name] = true
			mu.Unlock()
			if dup {
				continue
			}

			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					return
				}
				defer func() { <-sem }()
				w.handle(ctx, path)
				mu.Lock()
				delete(seen, path)
				mu.Unlock()
			}(ev.Name)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	entry := log.WithField("file", path)
	if err := waitStable(ctx, path, w.settle); err != nil {
		entry.WithError(err).Warn("skipping recording")
		return
	}
	a, err := w.analyzer.Run(ctx, Request{MediaPath: path, Owner: w.cfg.Owner, Label: filepath.Base(path)})
	if err != nil {
		entry.WithError(err).Error("analysis failed")
		return
	}
	entry.WithFields(log.Fields{"meeting_id": a.ID, "clarity_index": a.ClarityIndex}).Info("recording analyzed")
}

// waitStable returns once the size of path is unchanged across one settle
// interval.
func waitStable(ctx context.Context, path string, settle time.Duration) error {
	last := int64(-1)
	for {
		fi, err := os.Stat(path)
		if err != nil {
			return err
		}
		if fi.Size() == last {
			return nil
		}
		last = fi.Size()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settle):
		}
	}
}

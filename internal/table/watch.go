package table

import (
	"context"
	"os"
	"time"
)

// FileWatcher polls file modification times and reports changed paths.
// A file that appears or disappears counts as a change.
type FileWatcher struct {
	paths    []string
	interval time.Duration
	onChange func(path string)
	seen     map[string]time.Time
}

func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &FileWatcher{
		paths:    append([]string(nil), paths...),
		interval: interval,
		onChange: onChange,
		seen:     make(map[string]time.Time, len(paths)),
	}
}

// Run polls until ctx is done.
func (w *FileWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.scan(true)
	for {
		select {
		case <-ticker.C:
			w.scan(false)
		case <-ctx.Done():
			return
		}
	}
}

// scan records mtimes; with prime set it only records them.
func (w *FileWatcher) scan(prime bool) {
	for _, p := range w.paths {
		var mt time.Time
		if fi, err := os.Stat(p); err == nil {
			mt = fi.ModTime()
		}
		last, ok := w.seen[p]
		w.seen[p] = mt
		if prime || !ok || mt.Equal(last) {
			continue
		}
		if w.onChange != nil {
			w.onChange(p)
		}
	}
}

// Watch reloads the store whenever one of its files changes. onReload, when
// set, receives the outcome of every reload.
func (s *Store) Watch(ctx context.Context, interval time.Duration, onReload func(path string, err error)) {
	w := NewFileWatcher(s.Files(), interval, func(path string) {
		err := s.Reload()
		if onReload != nil {
			onReload(path, err)
		}
	})
	w.Run(ctx)
}

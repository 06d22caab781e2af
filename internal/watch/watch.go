// Package watch reloads the rule table when its file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Watcher calls reload once per burst of changes to a single file.
type Watcher struct {
	path     string
	debounce time.Duration
	reload   func(context.Context)
	log      zerolog.Logger

	fw *fsnotify.Watcher
}

// New watches path. The parent directory is watched rather than the file so
// that editors replacing the file by rename are still seen.
func New(path string, debounce time.Duration, reload func(context.Context), logger zerolog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		reload:   reload,
		log:      logger.With().Str("component", "watch").Str("path", abs).Logger(),
		fw:       fw,
	}, nil
}

// Run blocks until ctx is done, then releases the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()
	w.log.Info().Msg("watching rule table")

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug().Str("op", ev.Op.String()).Msg("rule table changed")
			timer.Reset(w.debounce)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("watch error")

		case <-timer.C:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}

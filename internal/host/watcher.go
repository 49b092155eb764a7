// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package host

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// DESIGN FILE WATCHER
// =============================================================================

// DesignWatcher watches a design fixture file and signals when it changes,
// so an open dialog can resynchronize its body list. Events are debounced:
// editors typically emit several writes per save.
//
// The watch is placed on the parent directory rather than the file itself,
// which survives the rename-over-original save strategy most editors use.
type DesignWatcher struct {
	path     string
	debounce time.Duration

	watcher *fsnotify.Watcher
	changes chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	pending time.Time
}

// NewDesignWatcher creates a watcher for the design file at path.
func NewDesignWatcher(path string, debounce time.Duration) (*DesignWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DesignWatcher{
		path:     abs,
		debounce: debounce,
		watcher:  fsw,
		changes:  make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Changes delivers one value per (debounced) change to the design file.
// The channel has capacity one; coalesced notifications are intentional.
func (w *DesignWatcher) Changes() <-chan struct{} {
	return w.changes
}

// Watch starts the watcher goroutines.
func (w *DesignWatcher) Watch() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.processEvents()
	go w.processPending()
	return nil
}

// processEvents records change times for the watched file.
func (w *DesignWatcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.mu.Lock()
				w.pending = time.Now()
				w.mu.Unlock()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the dialog simply stops seeing
			// live reloads.
		}
	}
}

// processPending flushes the pending change once it is older than the
// debounce window.
func (w *DesignWatcher) processPending() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			ready := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if ready {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if ready {
				select {
				case w.changes <- struct{}{}:
				default:
				}
			}
		}
	}
}

// Close stops watching and releases resources.
func (w *DesignWatcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

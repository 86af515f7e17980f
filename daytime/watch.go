// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daytime

import (
	"path/filepath"
	"sync/atomic"

	"cogentcore.org/core/base/errors"
	"github.com/fsnotify/fsnotify"
)

// Watcher watches the overrides file for changes made by an external
// editor. Changes are only noted on the watch goroutine: they are
// applied on the render thread by [Watcher.Poll], so that settings
// are never modified concurrently with a frame.
type Watcher struct {
	Overrides *Overrides

	watcher *fsnotify.Watcher
	pending atomic.Bool
	done    chan struct{}
}

// Watch starts watching the overrides file. The directory is watched,
// because editors often replace files rather than writing them.
func (ov *Overrides) Watch() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Log(err)
	}
	if err := fw.Add(filepath.Dir(ov.Path)); err != nil {
		fw.Close()
		return nil, errors.Log(err)
	}
	w := &Watcher{Overrides: ov, watcher: fw, done: make(chan struct{})}
	go w.watch()
	return w, nil
}

func (w *Watcher) watch() {
	target := filepath.Clean(w.Overrides.Path)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.pending.Store(true)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			errors.Log(err)
		}
	}
}

// Poll reloads the overrides if the file changed since the last call,
// returning whether it did. Call it once per frame on the render thread.
func (w *Watcher) Poll() bool {
	if !w.pending.Swap(false) {
		return false
	}
	return w.Overrides.Load()
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

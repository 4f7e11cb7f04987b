/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package watch re-runs a callback whenever Twee sources under a path
// change. Events are debounced so editors that write in bursts trigger a
// single re-parse.
package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	applog "gotwee/internal/log"
	"gotwee/internal/story"
)

// Watcher observes a file or directory tree for Twee source changes.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	debounce time.Duration
	stop     chan struct{}
}

// New creates a watcher rooted at path. For a directory, every
// subdirectory is watched as well; for a file, its parent directory is
// watched and events are filtered to the file.
func New(path string, debounce time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	w := &Watcher{fs: fs, root: path, debounce: debounce, stop: make(chan struct{})}

	info, err := os.Stat(path)
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.fs.Add(p)
			}
			return nil
		})
	} else {
		err = fs.Add(filepath.Dir(path))
	}
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return w, nil
}

// Run blocks, invoking onChange with the watched root after each debounced
// burst of relevant events. It returns when Close is called or the
// underlying watcher shuts down.
func (w *Watcher) Run(onChange func(root string)) {
	l := applog.WithComponent("watch")
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			l.Debug("fs event", slog.String("op", ev.Op.String()), slog.String("path", ev.Name))
			// New directories must be added to the watch set as they appear.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.fs.Add(ev.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange(w.root)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			l.Warn("watch error", slog.Any("err", err))
		}
	}
}

// relevant filters events down to Twee sources (or new directories) under
// the watched root.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		return true
	}
	if w.root == ev.Name {
		return true
	}
	return story.HasTweeExtension(ev.Name)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stop)
	return w.fs.Close()
}

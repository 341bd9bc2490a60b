// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package xprof

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce batches bursts of filesystem events into one
// re-discovery pass. Profilers write many files per capture.
const watchDebounce = 5 * time.Second

// Watcher triggers a background discovery pass when a local log
// directory changes, so newly captured runs show up without waiting for
// the next /runs request. Only local logdirs can be watched; GCS
// logdirs rely on per-request discovery.
type Watcher struct {
	svc     *Service
	logdir  string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher over a local log directory.
func NewWatcher(svc *Service, logdir string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := fw.Add(logdir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", logdir, err)
	}
	return &Watcher{svc: svc, logdir: logdir, logger: logger, watcher: fw}, nil
}

// Run processes events until the context is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	refresh := make(chan struct{}, 1)
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, func() {
			select {
			case refresh <- struct{}{}:
			default:
			}
		})
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename) || event.Op.Has(fsnotify.Remove) {
				schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Filesystem watcher error", "logdir", w.logdir, "error", err)
		case <-refresh:
			w.logger.Info("Logdir changed, re-running discovery", "logdir", w.logdir)
			runs := w.svc.Index().Runs(ctx)
			w.logger.Info("Discovery pass finished", "runs", len(runs))
		}
	}
}

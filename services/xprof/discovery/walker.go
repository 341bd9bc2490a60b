// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package discovery

import (
	"context"
	"log/slog"
	"path"

	"github.com/AleutianAI/xprofd/services/xprof/fsys"
)

// Walker enumerates a directory subtree in breadth-first order, one
// directory per Next call. The FIFO queue lives in the walker itself,
// and the children of a yielded directory are not listed until the
// following Next call, so a consumer that stops early never triggers
// further listing calls.
//
// A listing failure is logged and treated as "this directory has no
// children"; it never aborts the walk. A walker is single-use: create a
// new one to restart the traversal.
type Walker struct {
	fs      fsys.FS
	limiter *Limiter
	logger  *slog.Logger
	root    string

	started bool
	done    bool
	pending string
	queue   []string
}

// NewWalker creates a walker rooted at root. The root itself is always
// yielded first, unless it does not exist or is not a directory, in
// which case the walk is empty.
func NewWalker(fs fsys.FS, limiter *Limiter, logger *slog.Logger, root string) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{fs: fs, limiter: limiter, logger: logger, root: root}
}

// Next returns the next directory in breadth-first order. The second
// return value is false once the walk is exhausted.
func (w *Walker) Next(ctx context.Context) (string, bool) {
	if w.done {
		return "", false
	}
	if !w.started {
		w.started = true
		if !w.fs.IsDir(ctx, w.root) {
			w.done = true
			return "", false
		}
		w.queue = append(w.queue, w.root)
	}
	if w.pending != "" {
		w.enqueueChildren(ctx, w.pending)
		w.pending = ""
	}
	if len(w.queue) == 0 {
		w.done = true
		return "", false
	}
	dir := w.queue[0]
	w.queue = w.queue[1:]
	w.pending = dir
	return dir, true
}

// enqueueChildren lists dir, rate limited, and appends its
// subdirectories to the queue.
func (w *Walker) enqueueChildren(ctx context.Context, dir string) {
	if err := w.limiter.Wait(ctx); err != nil {
		w.logger.Warn("Rate limiter interrupted, stopping walk", "dir", dir, "error", err)
		w.done = true
		return
	}
	entries, err := w.fs.List(ctx, dir)
	if err != nil {
		listCallsTotal.WithLabelValues("error").Inc()
		w.logger.Warn("Could not list directory", "dir", dir, "error", err)
		return
	}
	listCallsTotal.WithLabelValues("ok").Inc()
	for _, e := range entries {
		if e.IsDir {
			w.queue = append(w.queue, path.Join(dir, e.Name))
		}
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package discovery finds profile runs beneath a log directory.
//
// A "frontend run name" is the path-join of a container directory name
// (or "." for the logdir root) and a profile run subdirectory found
// beneath that container's plugins/profile directory:
//
//	logs/
//	  plugins/profile/run1/hostA.xplane.pb            -> "run1"
//	  train/plugins/profile/run1/hostA.xplane.pb      -> "train/run1"
//	  train/plugins/profile/run2/hostA.xplane.pb      -> "train/run2"
//	  new_job/tb/plugins/profile/run1/a.xplane.pb     -> "new_job/tb/run1"
//
// Discovery walks the whole tree so profile data nested arbitrarily
// deep is found even when no event file marks its container as a run.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/xprofd/services/xprof/assets"
	"github.com/AleutianAI/xprofd/services/xprof/fsys"
)

// ErrRunNotFound indicates a frontend run name with no matching backing
// directory. This is a caller error, distinct from the transient
// listing failures discovery swallows.
var ErrRunNotFound = errors.New("no matching run directory")

// RunLister is the collaborator that knows which directories the
// event-file layer already recognizes as runs. Their parents are
// candidate containers for profile data even when the tree walk would
// miss them.
type RunLister interface {
	ListRuns(ctx context.Context) ([]string, error)
}

// Index discovers profile runs and caches the mapping from frontend run
// name to backing directory.
//
// The cache is additive for the process lifetime: discovery passes add
// or overwrite entries, never remove them. Stale entries for deleted
// runs surface as listing failures only when dereferenced. Index is
// safe for concurrent use; the lock covers only cache access and the
// active flag, never a discovery walk, so two concurrent callers may
// both perform a redundant pass. Discovery is idempotent, so that is a
// bounded inefficiency rather than a correctness hazard.
type Index struct {
	fs         fsys.FS
	logdir     string
	pluginName string
	limiter    *Limiter
	runLister  RunLister
	logger     *slog.Logger

	mu      sync.Mutex
	active  bool
	runDirs map[string]string
}

// NewIndex creates an index over the given filesystem and logdir root.
func NewIndex(fs fsys.FS, logdir, pluginName string, limiter *Limiter, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		fs:         fs,
		logdir:     strings.TrimRight(logdir, "/"),
		pluginName: pluginName,
		limiter:    limiter,
		logger:     logger,
		runDirs:    make(map[string]string),
	}
}

// WithRunLister sets the event-run collaborator.
func (ix *Index) WithRunLister(rl RunLister) *Index {
	ix.runLister = rl
	return ix
}

// Runs performs a full discovery pass and returns the frontend run
// names in discovery order, each yielded at most once per pass. As a
// side effect the run-directory cache entry for every discovered run is
// populated.
func (ix *Index) Runs(ctx context.Context) []string {
	ctx, span := discoveryTracer.Start(ctx, "discovery.runs")
	defer span.End()
	start := time.Now()
	defer func() {
		walkDuration.Observe(time.Since(start).Seconds())
		passesTotal.Inc()
	}()

	containers := ix.candidateContainers(ctx)

	var runs []string
	seen := make(map[string]bool)
	for _, container := range containers {
		containerDir := ix.containerDir(container)
		pluginDir := assets.PluginDirectory(containerDir, ix.pluginName)
		names, err := assets.ListAssets(ctx, ix.fs, containerDir, ix.pluginName)
		if err != nil {
			ix.logger.Debug("No plugin assets for container", "container", container, "error", err)
			continue
		}
		for _, profileRun := range names {
			// Some filesystem implementations emit a trailing separator.
			profileRun = strings.TrimRight(profileRun, "/")
			if profileRun == "" {
				continue
			}
			frontendRun := profileRun
			if container != "." {
				frontendRun = path.Join(container, profileRun)
			}
			runDir := path.Join(pluginDir, profileRun)
			if !ix.fs.IsDir(ctx, runDir) {
				continue
			}
			ix.mu.Lock()
			ix.runDirs[frontendRun] = runDir
			ix.mu.Unlock()
			if !seen[frontendRun] {
				seen[frontendRun] = true
				runs = append(runs, frontendRun)
			}
		}
	}
	span.SetAttributes(attribute.Int("runs", len(runs)))
	runsLastPass.Set(float64(len(runs)))
	return runs
}

// candidateContainers seeds the container set with the logdir root and
// the parents of event-layer runs, then walks the tree adding every
// directory whose relative path ends in plugins/<plugin>. The result is
// sorted for deterministic iteration; run ordering is not part of the
// contract.
func (ix *Index) candidateContainers(ctx context.Context) []string {
	containers := map[string]bool{".": true}
	if ix.runLister != nil {
		eventRuns, err := ix.runLister.ListRuns(ctx)
		if err != nil {
			ix.logger.Warn("Could not list event runs", "error", err)
		}
		for _, run := range eventRuns {
			containers[path.Dir(strings.TrimRight(run, "/"))] = true
		}
	}

	ix.logger.Info("Starting subdirectory scan", "logdir", ix.logdir)
	w := NewWalker(ix.fs, ix.limiter, ix.logger, ix.logdir)
	for dir, ok := w.Next(ctx); ok; dir, ok = w.Next(ctx) {
		parts := ix.relativeParts(dir)
		if len(parts) >= 3 &&
			parts[len(parts)-2] == assets.PluginsDirName &&
			parts[len(parts)-1] == ix.pluginName {
			containers[path.Join(parts[:len(parts)-2]...)] = true
		}
	}
	ix.logger.Info("Finished subdirectory scan", "logdir", ix.logdir)

	sorted := make([]string, 0, len(containers))
	for c := range containers {
		sorted = append(sorted, c)
	}
	sort.Strings(sorted)
	return sorted
}

// relativeParts splits dir's path relative to the logdir root into
// segments. The root itself yields no segments.
func (ix *Index) relativeParts(dir string) []string {
	if dir == ix.logdir {
		return nil
	}
	rel := dir
	if ix.logdir != "" {
		rel = strings.TrimPrefix(dir, ix.logdir+"/")
		if rel == dir {
			return nil
		}
	}
	return strings.Split(rel, "/")
}

// containerDir maps a container name to its directory, with "." naming
// the logdir root.
func (ix *Index) containerDir(container string) string {
	if container == "." {
		return ix.logdir
	}
	return path.Join(ix.logdir, container)
}

// Active reports whether any profile run exists. A positive answer is
// cached for the process lifetime; the lock is held only for the
// check-and-set, so concurrent first callers may each walk the tree
// once.
func (ix *Index) Active(ctx context.Context) bool {
	ix.mu.Lock()
	active := ix.active
	ix.mu.Unlock()
	if active {
		return true
	}
	if len(ix.Runs(ctx)) == 0 {
		return false
	}
	ix.mu.Lock()
	ix.active = true
	ix.mu.Unlock()
	return true
}

// RunDir resolves a frontend run name to its backing directory. The
// cache from the most recent discovery passes is consulted first; on a
// miss the path is re-derived from the run name. A run whose container
// directory does not exist yields ErrRunNotFound.
func (ix *Index) RunDir(ctx context.Context, run string) (string, error) {
	run = strings.TrimRight(run, "/")
	ix.mu.Lock()
	dir, ok := ix.runDirs[run]
	ix.mu.Unlock()
	if ok {
		return dir, nil
	}
	if run == "" {
		return "", fmt.Errorf("%w: empty run name", ErrRunNotFound)
	}
	container := path.Dir(run)
	profileRun := path.Base(run)
	containerDir := ix.containerDir(container)
	if !ix.fs.IsDir(ctx, containerDir) {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, run)
	}
	return path.Join(assets.PluginDirectory(containerDir, ix.pluginName), profileRun), nil
}

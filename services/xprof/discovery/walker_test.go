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
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/xprofd/services/xprof/fsys"
)

// fakeFS is an in-memory FS built from a set of file paths. Directories
// are implied by the paths. Individual directories can be marked as
// failing their listing.
type fakeFS struct {
	files     map[string][]byte
	failList  map[string]bool
	listCalls []string
}

func newFakeFS(paths ...string) *fakeFS {
	f := &fakeFS{files: make(map[string][]byte), failList: make(map[string]bool)}
	for _, p := range paths {
		f.files[p] = []byte{}
	}
	return f
}

func (f *fakeFS) isDir(p string) bool {
	prefix := strings.TrimRight(p, "/") + "/"
	for file := range f.files {
		if strings.HasPrefix(file, prefix) {
			return true
		}
	}
	return false
}

func (f *fakeFS) List(_ context.Context, dir string) ([]fsys.Entry, error) {
	f.listCalls = append(f.listCalls, dir)
	if f.failList[dir] {
		return nil, errors.New("listing denied")
	}
	if !f.isDir(dir) {
		return nil, fmt.Errorf("no such directory: %s", dir)
	}
	prefix := strings.TrimRight(dir, "/") + "/"
	seen := make(map[string]fsys.Entry)
	for file := range f.files {
		rest, ok := strings.CutPrefix(file, prefix)
		if !ok {
			continue
		}
		name, _, nested := strings.Cut(rest, "/")
		seen[name] = fsys.Entry{Name: name, IsDir: nested}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	entries := make([]fsys.Entry, 0, len(names))
	for _, n := range names {
		entries = append(entries, seen[n])
	}
	return entries, nil
}

func (f *fakeFS) IsDir(_ context.Context, p string) bool {
	return f.isDir(p)
}

func (f *fakeFS) Exists(_ context.Context, p string) bool {
	if _, ok := f.files[p]; ok {
		return true
	}
	return f.isDir(p)
}

func (f *fakeFS) ReadFile(_ context.Context, p string) ([]byte, error) {
	data, ok := f.files[p]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", p)
	}
	return data, nil
}

func (f *fakeFS) WriteFile(_ context.Context, p string, data []byte) error {
	f.files[p] = data
	return nil
}

func collect(ctx context.Context, w *Walker) []string {
	var dirs []string
	for dir, ok := w.Next(ctx); ok; dir, ok = w.Next(ctx) {
		dirs = append(dirs, dir)
	}
	return dirs
}

func TestWalker_BreadthFirst(t *testing.T) {
	fs := newFakeFS(
		"logs/a/one.txt",
		"logs/a/deep/two.txt",
		"logs/b/three.txt",
		"logs/four.txt",
	)
	w := NewWalker(fs, nil, nil, "logs")

	got := collect(context.Background(), w)
	require.Equal(t, []string{"logs", "logs/a", "logs/b", "logs/a/deep"}, got)
}

func TestWalker_NonexistentRoot(t *testing.T) {
	fs := newFakeFS("logs/a/one.txt")
	w := NewWalker(fs, nil, nil, "elsewhere")

	got := collect(context.Background(), w)
	assert.Empty(t, got)
}

func TestWalker_ListingFailureYieldsNoChildren(t *testing.T) {
	fs := newFakeFS(
		"logs/a/one.txt",
		"logs/a/deep/two.txt",
		"logs/b/three.txt",
	)
	fs.failList["logs/a"] = true
	w := NewWalker(fs, nil, nil, "logs")

	got := collect(context.Background(), w)
	// logs/a is still yielded; only its children are lost.
	assert.Equal(t, []string{"logs", "logs/a", "logs/b"}, got)
}

func TestWalker_RootListingFailureYieldsRootOnly(t *testing.T) {
	fs := newFakeFS(
		"logs/a/one.txt",
		"logs/b.txt",
	)
	fs.failList["logs"] = true
	w := NewWalker(fs, nil, nil, "logs")

	got := collect(context.Background(), w)
	assert.Equal(t, []string{"logs"}, got)
}

func TestWalker_EarlyStopSkipsListing(t *testing.T) {
	fs := newFakeFS(
		"logs/a/deep/one.txt",
		"logs/b/deep/two.txt",
	)
	w := NewWalker(fs, nil, nil, "logs")

	dir, ok := w.Next(context.Background())
	require.True(t, ok)
	require.Equal(t, "logs", dir)

	// The yielded directory is not listed until the walk continues.
	assert.Empty(t, fs.listCalls)

	_, ok = w.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, []string{"logs"}, fs.listCalls)
}

func TestWalker_Exhausted(t *testing.T) {
	fs := newFakeFS("logs/one.txt")
	w := NewWalker(fs, nil, nil, "logs")

	collect(context.Background(), w)
	_, ok := w.Next(context.Background())
	assert.False(t, ok)
}

func TestWalker_CanceledContextStopsWalk(t *testing.T) {
	fs := newFakeFS("logs/a/one.txt")
	limiter := NewLimiter(10, 0, 1)
	w := NewWalker(fs, limiter, nil, "logs")

	ctx, cancel := context.WithCancel(context.Background())
	dir, ok := w.Next(ctx)
	require.True(t, ok)
	require.Equal(t, "logs", dir)

	cancel()
	_, ok = w.Next(ctx)
	assert.False(t, ok)
}

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
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profileTree mirrors the layouts profilers actually produce: runs at
// the logdir root, under container directories, and nested arbitrarily
// deep.
func profileTree() *fakeFS {
	return newFakeFS(
		"logs/plugins/profile/run1/hostA.xplane.pb",
		"logs/train/plugins/profile/run1/hostA.xplane.pb",
		"logs/train/plugins/profile/run2/hostB.xplane.pb",
		"logs/validation/plugins/profile/run1/hostA.xplane.pb",
		"logs/new_job/tensorboard/plugins/profile/run1/hostA.xplane.pb",
		"logs/train/events.out.tfevents.123",
	)
}

func sortedRuns(ix *Index, ctx context.Context) []string {
	runs := ix.Runs(ctx)
	sort.Strings(runs)
	return runs
}

func TestIndex_Runs(t *testing.T) {
	ix := NewIndex(profileTree(), "logs", "profile", nil, nil)

	got := sortedRuns(ix, context.Background())
	assert.Equal(t, []string{
		"new_job/tensorboard/run1",
		"run1",
		"train/run1",
		"train/run2",
		"validation/run1",
	}, got)
}

func TestIndex_Runs_EmptyLogdir(t *testing.T) {
	ix := NewIndex(newFakeFS("logs/notes.txt"), "logs", "profile", nil, nil)
	assert.Empty(t, ix.Runs(context.Background()))
}

func TestIndex_Runs_NonexistentLogdir(t *testing.T) {
	ix := NewIndex(newFakeFS(), "logs", "profile", nil, nil)
	assert.Empty(t, ix.Runs(context.Background()))
}

func TestIndex_Runs_SkipsPlainFilesInPluginDir(t *testing.T) {
	fs := newFakeFS(
		"logs/plugins/profile/run1/hostA.xplane.pb",
		"logs/plugins/profile/stray.txt",
	)
	ix := NewIndex(fs, "logs", "profile", nil, nil)
	assert.Equal(t, []string{"run1"}, ix.Runs(context.Background()))
}

func TestIndex_Runs_TrailingSlashLogdir(t *testing.T) {
	ix := NewIndex(profileTree(), "logs/", "profile", nil, nil)
	got := sortedRuns(ix, context.Background())
	assert.Contains(t, got, "train/run1")
	assert.Contains(t, got, "run1")
}

// stubRunLister returns fixed event-layer runs.
type stubRunLister struct {
	runs []string
	err  error
}

func (s stubRunLister) ListRuns(context.Context) ([]string, error) {
	return s.runs, s.err
}

func TestIndex_Runs_RunListerSeedsContainers(t *testing.T) {
	fs := newFakeFS(
		"logs/exp1/plugins/profile/run1/hostA.xplane.pb",
		"logs/exp1/train/events.out.tfevents.123",
	)
	// The walk cannot see below the root, so only the event layer can
	// surface exp1 as a container.
	fs.failList["logs"] = true
	ix := NewIndex(fs, "logs", "profile", nil, nil).
		WithRunLister(stubRunLister{runs: []string{"exp1/train"}})

	got := ix.Runs(context.Background())
	assert.Equal(t, []string{"exp1/run1"}, got)
}

func TestIndex_Runs_RunListerFailureIsNonFatal(t *testing.T) {
	ix := NewIndex(profileTree(), "logs", "profile", nil, nil).
		WithRunLister(stubRunLister{err: errors.New("event layer down")})

	got := sortedRuns(ix, context.Background())
	assert.Contains(t, got, "train/run1")
}

func TestIndex_Runs_Idempotent(t *testing.T) {
	ix := NewIndex(profileTree(), "logs", "profile", nil, nil)

	first := sortedRuns(ix, context.Background())
	second := sortedRuns(ix, context.Background())
	assert.Equal(t, first, second)
}

func TestIndex_RunDir_FromCache(t *testing.T) {
	fs := profileTree()
	ix := NewIndex(fs, "logs", "profile", nil, nil)
	ix.Runs(context.Background())

	// Delete the backing files; the cached mapping must survive.
	fs.files = map[string][]byte{"logs/keep.txt": []byte{}}

	dir, err := ix.RunDir(context.Background(), "train/run2")
	require.NoError(t, err)
	assert.Equal(t, "logs/train/plugins/profile/run2", dir)
}

func TestIndex_RunDir_ReDerivesOnCacheMiss(t *testing.T) {
	ix := NewIndex(profileTree(), "logs", "profile", nil, nil)

	dir, err := ix.RunDir(context.Background(), "train/run1")
	require.NoError(t, err)
	assert.Equal(t, "logs/train/plugins/profile/run1", dir)
}

func TestIndex_RunDir_RootContainer(t *testing.T) {
	ix := NewIndex(profileTree(), "logs", "profile", nil, nil)

	dir, err := ix.RunDir(context.Background(), "run1")
	require.NoError(t, err)
	assert.Equal(t, "logs/plugins/profile/run1", dir)
}

func TestIndex_RunDir_UnknownContainer(t *testing.T) {
	ix := NewIndex(profileTree(), "logs", "profile", nil, nil)

	_, err := ix.RunDir(context.Background(), "gone/run1")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestIndex_RunDir_EmptyRun(t *testing.T) {
	ix := NewIndex(profileTree(), "logs", "profile", nil, nil)

	_, err := ix.RunDir(context.Background(), "")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestIndex_Active(t *testing.T) {
	fs := profileTree()
	ix := NewIndex(fs, "logs", "profile", nil, nil)

	require.True(t, ix.Active(context.Background()))

	// A positive answer sticks even after the data disappears.
	fs.files = map[string][]byte{}
	assert.True(t, ix.Active(context.Background()))
}

func TestIndex_Active_NoData(t *testing.T) {
	ix := NewIndex(newFakeFS("logs/notes.txt"), "logs", "profile", nil, nil)
	assert.False(t, ix.Active(context.Background()))
}

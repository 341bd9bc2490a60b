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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/xprofd/services/xprof/resolve"
)

// fakeConverter records calls and serves canned results.
type fakeConverter struct {
	names      []string
	data       []byte
	dataErr    error
	gotPaths   []string
	gotTool    string
	gotParams  resolve.Params
	dataCalls  int
	namesCalls int
}

func (f *fakeConverter) ToolNames(_ context.Context, xspacePaths []string) ([]string, error) {
	f.namesCalls++
	f.gotPaths = xspacePaths
	return f.names, nil
}

func (f *fakeConverter) ToolData(_ context.Context, xspacePaths []string, tool string, params resolve.Params) ([]byte, string, error) {
	f.dataCalls++
	f.gotPaths = xspacePaths
	f.gotTool = tool
	f.gotParams = params
	if f.dataErr != nil {
		return nil, "", f.dataErr
	}
	return f.data, "application/json", nil
}

// newTestLogdir builds a logdir with one root-level run and one
// containered run.
func newTestLogdir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{
		"plugins/profile/run1/host_a.xplane.pb",
		"plugins/profile/run1/host_b.xplane.pb",
		"plugins/profile/run1/module_1.hlo_proto.pb",
		"train/plugins/profile/run2/host_a.xplane.pb",
	} {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	return filepath.ToSlash(root)
}

func newTestService(t *testing.T, conv resolve.Converter) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), ServiceConfig{Logdir: newTestLogdir(t)}, nil)
	require.NoError(t, err)
	if conv != nil {
		svc.WithConverter(conv)
	}
	return svc
}

func TestService_Runs_Descending(t *testing.T) {
	svc := newTestService(t, nil)
	runs := svc.Runs(context.Background())
	assert.Equal(t, []string{"train/run2", "run1"}, runs)
}

func TestService_Active(t *testing.T) {
	svc := newTestService(t, nil)
	assert.True(t, svc.Active(context.Background()))
}

func TestService_RunTools(t *testing.T) {
	conv := &fakeConverter{names: []string{"kernel_stats", "overview_page"}}
	svc := newTestService(t, conv)

	tools, err := svc.RunTools(context.Background(), "run1")
	require.NoError(t, err)
	assert.Equal(t, []string{"overview_page", "kernel_stats"}, tools)
	assert.Len(t, conv.gotPaths, 2)
}

func TestService_RunTools_UnknownRun(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.RunTools(context.Background(), "gone/run9")
	assert.Error(t, err)
}

func TestService_Hosts(t *testing.T) {
	svc := newTestService(t, nil)

	hosts, err := svc.Hosts(context.Background(), "run1", "kernel_stats")
	require.NoError(t, err)
	assert.Equal(t, []HostMetadata{
		{Hostname: "ALL_HOSTS"},
		{Hostname: "host_a"},
		{Hostname: "host_b"},
	}, hosts)
}

func TestService_Hosts_HLOToolListsModules(t *testing.T) {
	svc := newTestService(t, nil)

	hosts, err := svc.Hosts(context.Background(), "run1", "graph_viewer")
	require.NoError(t, err)
	assert.Equal(t, []HostMetadata{{Hostname: "module_1"}}, hosts)
}

func TestService_ModuleList(t *testing.T) {
	svc := newTestService(t, nil)

	modules, err := svc.ModuleList(context.Background(), "run1")
	require.NoError(t, err)
	assert.Equal(t, "module_1", modules)
}

func TestService_Data(t *testing.T) {
	conv := &fakeConverter{data: []byte(`{"ok":true}`)}
	svc := newTestService(t, conv)

	data, contentType, err := svc.Data(context.Background(), DataRequest{
		Run:    "run1",
		Tool:   "overview_page",
		Host:   "host_a",
		Params: resolve.Params{UseSavedResult: true},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "overview_page", conv.gotTool)
	require.Len(t, conv.gotPaths, 1)
	assert.Equal(t, "host_a.xplane.pb", filepath.Base(conv.gotPaths[0]))
}

func TestService_Data_CacheMarkerGating(t *testing.T) {
	conv := &fakeConverter{data: []byte("{}")}
	svc := newTestService(t, conv)
	req := DataRequest{
		Run:    "run1",
		Tool:   "overview_page",
		Host:   "host_a",
		Params: resolve.Params{UseSavedResult: true},
	}

	// No marker yet: the saved-result preference is overridden and the
	// marker is written after a fresh conversion.
	_, _, err := svc.Data(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, conv.gotParams.UseSavedResult)

	runDir, err := svc.Index().RunDir(context.Background(), "run1")
	require.NoError(t, err)
	marker, err := os.ReadFile(filepath.FromSlash(runDir + "/" + CacheVersionFile))
	require.NoError(t, err)
	assert.Equal(t, ServiceVersion, string(marker))

	// Marker now matches: the preference is honored.
	_, _, err = svc.Data(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, conv.gotParams.UseSavedResult)
}

func TestService_Data_StaleCacheMarker(t *testing.T) {
	conv := &fakeConverter{data: []byte("{}")}
	svc := newTestService(t, conv)

	runDir, err := svc.Index().RunDir(context.Background(), "run1")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.FromSlash(runDir+"/"+CacheVersionFile), []byte("0.0.1"), 0o644))

	_, _, err = svc.Data(context.Background(), DataRequest{
		Run:    "run1",
		Tool:   "overview_page",
		Host:   "host_a",
		Params: resolve.Params{UseSavedResult: true},
	})
	require.NoError(t, err)
	assert.False(t, conv.gotParams.UseSavedResult)
}

func TestService_Data_AllHosts(t *testing.T) {
	conv := &fakeConverter{data: []byte("{}")}
	svc := newTestService(t, conv)

	_, _, err := svc.Data(context.Background(), DataRequest{
		Run:  "run1",
		Tool: "overview_page",
		Host: "ALL_HOSTS",
	})
	require.NoError(t, err)
	require.Len(t, conv.gotPaths, 2)
	assert.Equal(t, "host_a.xplane.pb", filepath.Base(conv.gotPaths[0]))
	assert.Equal(t, "host_b.xplane.pb", filepath.Base(conv.gotPaths[1]))
}

func TestService_Data_NoConverter(t *testing.T) {
	svc := newTestService(t, nil)
	_, _, err := svc.Data(context.Background(), DataRequest{Run: "run1", Tool: "overview_page"})
	assert.ErrorIs(t, err, ErrNoConverter)
}

func TestService_Data_NonXPlaneTool(t *testing.T) {
	svc := newTestService(t, &fakeConverter{})
	_, _, err := svc.Data(context.Background(), DataRequest{Run: "run1", Tool: "not_a_tool"})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestService_Data_MissingAsset(t *testing.T) {
	svc := newTestService(t, &fakeConverter{})
	_, _, err := svc.Data(context.Background(), DataRequest{
		Run:  "run1",
		Tool: "overview_page",
		Host: "host_z",
	})
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

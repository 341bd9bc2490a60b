// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/xprofd/services/xprof/fsys"
)

func TestPluginDirectory(t *testing.T) {
	assert.Equal(t, "logs/train/plugins/profile", PluginDirectory("logs/train", "profile"))
	assert.Equal(t, "logs/plugins/profile", PluginDirectory("logs", "profile"))
}

func TestListAssets(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"plugins/profile/run1/host.xplane.pb",
		"plugins/profile/run2/host.xplane.pb",
	} {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	names, err := ListAssets(context.Background(), fsys.Local{}, filepath.ToSlash(root), "profile")
	require.NoError(t, err)
	assert.Equal(t, []string{"run1", "run2"}, names)
}

func TestListAssets_MissingDir(t *testing.T) {
	_, err := ListAssets(context.Background(), fsys.Local{}, filepath.ToSlash(t.TempDir()), "profile")
	assert.Error(t, err)
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package assets resolves plugin asset directories beneath container
// run directories. The on-disk convention is
// <container>/plugins/<plugin>/<asset>.
package assets

import (
	"context"
	"path"

	"github.com/AleutianAI/xprofd/services/xprof/fsys"
)

// PluginsDirName is the namespace directory that holds per-plugin
// assets inside a container run directory.
const PluginsDirName = "plugins"

// PluginDirectory returns the asset directory for a plugin beneath a
// container directory.
func PluginDirectory(containerDir, pluginName string) string {
	return path.Join(containerDir, PluginsDirName, pluginName)
}

// ListAssets returns the names of the entries directly beneath the
// plugin's asset directory for a container. A missing or unreadable
// asset directory yields an error; callers decide whether that matters.
func ListAssets(ctx context.Context, fs fsys.FS, containerDir, pluginName string) ([]string, error) {
	entries, err := fs.List(ctx, PluginDirectory(containerDir, pluginName))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fsys

import (
	"context"
	"os"
	"path/filepath"
)

// Local implements FS on the operating system filesystem.
type Local struct{}

// List returns the immediate children of dir.
func (Local) List(_ context.Context, dir string) ([]Entry, error) {
	des, err := os.ReadDir(filepath.FromSlash(dir))
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		entries = append(entries, Entry{Name: de.Name(), IsDir: de.IsDir()})
	}
	return entries, nil
}

// IsDir reports whether p exists and is a directory.
func (Local) IsDir(_ context.Context, p string) bool {
	info, err := os.Stat(filepath.FromSlash(p))
	return err == nil && info.IsDir()
}

// Exists reports whether p exists.
func (Local) Exists(_ context.Context, p string) bool {
	_, err := os.Stat(filepath.FromSlash(p))
	return err == nil
}

// ReadFile returns the contents of the file at p.
func (Local) ReadFile(_ context.Context, p string) ([]byte, error) {
	return os.ReadFile(filepath.FromSlash(p))
}

// WriteFile replaces the contents of the file at p.
func (Local) WriteFile(_ context.Context, p string, data []byte) error {
	return os.WriteFile(filepath.FromSlash(p), data, 0o644)
}

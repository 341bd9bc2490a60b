// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package fsys is the filesystem seam between the discovery core and
// the storage backing a log directory. Log directories live either on
// local disk or in a GCS bucket; the discovery code only ever sees the
// FS interface and slash-separated paths.
package fsys

import (
	"context"
	"path"
	"sort"
	"strings"
)

// Entry is one child of a directory listing.
type Entry struct {
	// Name is the base name of the child, without any path separators.
	Name string

	// IsDir reports whether the child is itself a directory. For object
	// stores this means a common prefix, not a real object.
	IsDir bool
}

// FS is the minimal filesystem surface the discovery core needs.
//
// Paths are slash-separated on every implementation. Listing a missing
// directory returns an error; callers in the discovery core treat every
// listing error as "no children" rather than propagating it.
type FS interface {
	// List returns the immediate children of dir.
	List(ctx context.Context, dir string) ([]Entry, error)

	// IsDir reports whether p exists and is a directory.
	IsDir(ctx context.Context, p string) bool

	// Exists reports whether p exists as a file or directory.
	Exists(ctx context.Context, p string) bool

	// ReadFile returns the full contents of the file at p.
	ReadFile(ctx context.Context, p string) ([]byte, error)

	// WriteFile replaces the contents of the file at p.
	WriteFile(ctx context.Context, p string, data []byte) error
}

// Glob lists dir and returns the base names matching pattern, sorted.
// Pattern syntax is path.Match. Listing errors propagate so callers can
// decide whether a missing directory matters.
func Glob(ctx context.Context, fs FS, dir, pattern string) ([]string, error) {
	entries, err := fs.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		ok, err := path.Match(pattern, e.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// ForRoot returns the FS implementation for a log directory root along
// with the root path as that implementation sees it.
//
// A root of the form gs://bucket/prefix selects the GCS backend, rooted
// at "prefix" inside the bucket. Anything else is a local path. The
// credentials path is only consulted for GCS roots and may be empty to
// use application default credentials.
func ForRoot(ctx context.Context, root, credentialsPath string) (FS, string, error) {
	if bucket, prefix, ok := splitGCSRoot(root); ok {
		g, err := NewGCS(ctx, bucket, credentialsPath)
		if err != nil {
			return nil, "", err
		}
		return g, prefix, nil
	}
	return Local{}, strings.TrimRight(root, "/"), nil
}

// splitGCSRoot splits gs://bucket/prefix into its bucket and prefix.
func splitGCSRoot(root string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(root, "gs://")
	if !found {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	return bucket, strings.TrimRight(prefix, "/"), bucket != ""
}

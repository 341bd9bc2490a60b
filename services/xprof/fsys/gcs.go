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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCS implements FS over a single GCS bucket. Paths are object names
// without any gs:// prefix; "directories" are common prefixes produced
// by delimiter listings, so an empty directory does not exist.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS creates a bucket-scoped filesystem.
//
// When credentialsPath is non-empty it must point at a service account
// key file; otherwise application default credentials are used.
func NewGCS(ctx context.Context, bucket, credentialsPath string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", credentialsPath)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// List returns the immediate children of dir via a delimiter listing.
func (g *GCS) List(ctx context.Context, dir string) ([]Entry, error) {
	prefix := objectPrefix(dir)
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{
		Prefix:    prefix,
		Delimiter: "/",
	})
	var entries []Entry
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list gs://%s/%s: %w", g.bucket, prefix, err)
		}
		if attrs.Prefix != "" {
			name := strings.TrimSuffix(strings.TrimPrefix(attrs.Prefix, prefix), "/")
			if name != "" {
				entries = append(entries, Entry{Name: name, IsDir: true})
			}
			continue
		}
		name := strings.TrimPrefix(attrs.Name, prefix)
		// The prefix itself may exist as a zero-byte placeholder object.
		if name != "" {
			entries = append(entries, Entry{Name: name})
		}
	}
	return entries, nil
}

// IsDir reports whether any object lives under p.
func (g *GCS) IsDir(ctx context.Context, p string) bool {
	if p == "" {
		return true
	}
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{
		Prefix: objectPrefix(p),
	})
	_, err := it.Next()
	return err == nil
}

// Exists reports whether p is an object or a non-empty prefix.
func (g *GCS) Exists(ctx context.Context, p string) bool {
	_, err := g.client.Bucket(g.bucket).Object(p).Attrs(ctx)
	if err == nil {
		return true
	}
	return g.IsDir(ctx, p)
}

// ReadFile returns the contents of the object at p.
func (g *GCS) ReadFile(ctx context.Context, p string) ([]byte, error) {
	r, err := g.client.Bucket(g.bucket).Object(p).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", g.bucket, p, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", g.bucket, p, err)
	}
	return data, nil
}

// WriteFile replaces the object at p.
func (g *GCS) WriteFile(ctx context.Context, p string, data []byte) error {
	w := g.client.Bucket(g.bucket).Object(p).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", g.bucket, p, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", p, err)
	}
	return nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}

func objectPrefix(dir string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" || dir == "." {
		return ""
	}
	return dir + "/"
}

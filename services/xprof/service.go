// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package xprof serves profiling-run discovery over HTTP: which runs
// exist beneath a log directory, which visualization tools each run
// offers, which hosts produced data for a tool, and the rendered tool
// payload itself. The log directory may live on local disk or in a GCS
// bucket.
package xprof

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/AleutianAI/xprofd/services/xprof/catalog"
	"github.com/AleutianAI/xprofd/services/xprof/discovery"
	"github.com/AleutianAI/xprofd/services/xprof/fsys"
	"github.com/AleutianAI/xprofd/services/xprof/resolve"
)

// ServiceVersion is the xprofd service version. It is also the value
// checked against run-directory cache markers.
const ServiceVersion = "0.1.0"

// PluginName is the plugin namespace this service serves beneath each
// container's plugins directory.
const PluginName = "profile"

// CacheVersionFile is the single-line marker file inside a profile run
// directory recording which service version produced its cached
// conversion results.
const CacheVersionFile = "cache_version.txt"

// ServiceConfig configures the profile service.
type ServiceConfig struct {
	// Logdir is the log directory root, either a local path or a
	// gs://bucket/prefix URL.
	Logdir string

	// CredentialsPath optionally points at a service account key for
	// GCS logdirs.
	CredentialsPath string

	// MaxListRequests, ListWindow and DirFanout parameterize the
	// listing rate limiter; zero values take the GCS-quota defaults.
	MaxListRequests int
	ListWindow      time.Duration
	DirFanout       int
}

// HostMetadata is the host entry shape the frontend consumes.
type HostMetadata struct {
	Hostname string `json:"hostname"`
}

// Service wires discovery and resolution together behind the HTTP
// handlers. All methods are safe for concurrent use.
type Service struct {
	fs     fsys.FS
	logdir string
	index  *discovery.Index
	conv   resolve.Converter
	logger *slog.Logger
}

// NewService creates the profile service for a log directory.
func NewService(ctx context.Context, cfg ServiceConfig, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fs, root, err := fsys.ForRoot(ctx, cfg.Logdir, cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open logdir %s: %w", cfg.Logdir, err)
	}
	limiter := discovery.NewLimiter(cfg.MaxListRequests, cfg.ListWindow, cfg.DirFanout)
	return &Service{
		fs:     fs,
		logdir: root,
		index:  discovery.NewIndex(fs, root, PluginName, limiter, logger),
		logger: logger,
	}, nil
}

// WithConverter sets the xplane conversion collaborator.
func (s *Service) WithConverter(conv resolve.Converter) *Service {
	s.conv = conv
	return s
}

// WithRunLister sets the event-run collaborator on the index.
func (s *Service) WithRunLister(rl discovery.RunLister) *Service {
	s.index.WithRunLister(rl)
	return s
}

// Index exposes the run index, for the watcher and for readiness
// checks.
func (s *Service) Index() *discovery.Index {
	return s.index
}

// Runs performs a discovery pass and returns the frontend run names
// sorted descending, newest timestamp-named runs first.
func (s *Service) Runs(ctx context.Context) []string {
	runs := s.index.Runs(ctx)
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	return runs
}

// Active reports whether any run has profile data.
func (s *Service) Active(ctx context.Context) bool {
	return s.index.Active(ctx)
}

// RunTools returns the ordered tool list for one frontend run.
func (s *Service) RunTools(ctx context.Context, run string) ([]string, error) {
	runDir, err := s.index.RunDir(ctx, run)
	if err != nil {
		return nil, err
	}
	filenames := s.listRunDir(ctx, runDir)
	return resolve.Tools(ctx, filenames, runDir, s.conv, s.logger), nil
}

// Hosts returns the hosts (or modules, for HLO tools) that produced
// data for a run and tool.
func (s *Service) Hosts(ctx context.Context, run, tool string) ([]HostMetadata, error) {
	runDir, err := s.index.RunDir(ctx, run)
	if err != nil {
		return nil, err
	}
	pattern := "*." + catalog.XPlaneExtension
	if catalog.UsesHLO(tool) {
		pattern = "*." + catalog.HLOProtoExtension
	}
	filenames, err := fsys.Glob(ctx, s.fs, runDir, pattern)
	if err != nil {
		s.logger.Warn("Cannot read asset directory", "run_dir", runDir, "error", err)
		filenames = nil
	}
	hosts := resolve.Hosts(filenames, tool)
	metadata := make([]HostMetadata, 0, len(hosts))
	for _, h := range hosts {
		metadata = append(metadata, HostMetadata{Hostname: h})
	}
	return metadata, nil
}

// ModuleList returns the run's HLO module names joined by commas.
func (s *Service) ModuleList(ctx context.Context, run string) (string, error) {
	runDir, err := s.index.RunDir(ctx, run)
	if err != nil {
		return "", err
	}
	filenames, err := fsys.Glob(ctx, s.fs, runDir, "*."+catalog.HLOProtoExtension)
	if err != nil {
		s.logger.Warn("Cannot read asset directory", "run_dir", runDir, "error", err)
		filenames = nil
	}
	return strings.Join(resolve.Modules(filenames), ","), nil
}

// DataRequest identifies one tool payload to render.
type DataRequest struct {
	Run    string
	Tool   string
	Host   string
	Params resolve.Params
}

// Data renders the payload for a run, tool and host by delegating to
// the converter. The run directory's cache marker gates the caller's
// use-saved-result preference: a missing, unreadable or mismatched
// marker forces a fresh conversion, after which the marker is
// rewritten.
func (s *Service) Data(ctx context.Context, req DataRequest) ([]byte, string, error) {
	runDir, err := s.index.RunDir(ctx, req.Run)
	if err != nil {
		return nil, "", err
	}
	if !catalog.UsesXPlane(req.Tool) {
		s.logger.Info("Tool does not use xplane", "tool", req.Tool)
		return nil, "", fmt.Errorf("%w: %s", ErrNoData, req.Tool)
	}
	if s.conv == nil {
		return nil, "", ErrNoConverter
	}

	params := req.Params
	params.Host = req.Host
	params.UseSavedResult = params.UseSavedResult && s.cacheMarkerValid(ctx, runDir)

	var assetPaths []string
	if req.Host == catalog.AllHosts {
		names, err := fsys.Glob(ctx, s.fs, runDir, catalog.MakeFilename("*", string(catalog.FormatXPlane)))
		if err != nil {
			return nil, "", fmt.Errorf("cannot read asset directory %s: %w", runDir, err)
		}
		for _, name := range names {
			assetPaths = append(assetPaths, path.Join(runDir, name))
		}
	} else {
		assetPaths = []string{path.Join(runDir, catalog.MakeFilename(req.Host, req.Tool))}
	}
	if err := s.validateAssetPaths(ctx, assetPaths); err != nil {
		return nil, "", err
	}

	data, contentType, err := s.conv.ToolData(ctx, assetPaths, req.Tool, params)
	if err != nil {
		return nil, "", fmt.Errorf("xplane conversion failed for %s: %w", req.Tool, err)
	}
	if !params.UseSavedResult {
		s.writeCacheMarker(ctx, runDir)
	}
	return data, contentType, nil
}

// listRunDir lists a run directory's file names, degrading to an empty
// listing on failure.
func (s *Service) listRunDir(ctx context.Context, runDir string) []string {
	entries, err := s.fs.List(ctx, runDir)
	if err != nil {
		s.logger.Warn("Cannot read asset directory", "run_dir", runDir, "error", err)
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

// validateAssetPaths rejects xplane asset paths that do not exist.
func (s *Service) validateAssetPaths(ctx context.Context, assetPaths []string) error {
	for _, p := range assetPaths {
		if strings.HasSuffix(p, catalog.XPlaneExtension) && !s.fs.Exists(ctx, p) {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, p)
		}
	}
	return nil
}

// cacheMarkerValid reports whether the run directory's cache marker
// matches the running service version.
func (s *Service) cacheMarkerValid(ctx context.Context, runDir string) bool {
	data, err := s.fs.ReadFile(ctx, path.Join(runDir, CacheVersionFile))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == ServiceVersion
}

// writeCacheMarker records the running version in the run directory.
func (s *Service) writeCacheMarker(ctx context.Context, runDir string) {
	p := path.Join(runDir, CacheVersionFile)
	if err := s.fs.WriteFile(ctx, p, []byte(ServiceVersion)); err != nil {
		s.logger.Warn("Cannot write cache version file", "path", p, "error", err)
	}
}

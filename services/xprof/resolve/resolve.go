// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package resolve answers "which tools and hosts does this run offer"
// from a run directory's file listing. Tool availability folds in the
// tools synthesizable from consolidated xplane files; host availability
// applies the per-tool all-hosts aggregation policy.
package resolve

import (
	"context"
	"log/slog"
	"path"
	"sort"

	"github.com/AleutianAI/xprofd/services/xprof/catalog"
)

// Params carries per-request conversion options through to the
// converter. Host doubles as the module selector for HLO tools.
type Params struct {
	Host                         string
	ModuleName                   string
	TQX                          string
	UseSavedResult               bool
	MemorySpace                  string
	ViewMemoryAllocationTimeline bool
	GraphViewerOptions           map[string]any
	TraceViewerOptions           map[string]any
}

// Converter is the collaborator that understands the consolidated
// xplane format. Parsing and rendering xplane data is outside this
// core; discovery only needs to ask which tools a set of xplane files
// contains, and the data layer needs the rendered payload.
type Converter interface {
	// ToolNames enumerates the tool identifiers contained in the given
	// xplane files.
	ToolNames(ctx context.Context, xspacePaths []string) ([]string, error)

	// ToolData renders the payload for one tool from the given xplane
	// files, returning the payload and its content type.
	ToolData(ctx context.Context, xspacePaths []string, tool string, params Params) ([]byte, string, error)
}

// Tools computes the ordered tool list for a run directory listing.
//
// Directly named tool files contribute their literal identifier.
// hlo_proto files contribute nothing here; they only surface through
// host and module listings. When xplane files are present and no run
// directory is known (directory-less contexts such as remote job
// metadata), every catalog xplane tool not already found directly is
// synthesized. With a run directory, enumeration is delegated to the
// converter; if the converter is missing or fails, the directly named
// tools stand alone.
//
// The result has the streaming variant superseding its plain
// counterpart and overview_page moved to the front, remaining tools in
// ascending name order.
func Tools(ctx context.Context, filenames []string, runDir string, conv Converter, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}
	tools := make(map[string]bool)
	found := make(map[string]bool)
	var xplanePaths []string
	for _, name := range filenames {
		_, format := catalog.ParseFilename(name)
		switch format {
		case catalog.FormatXPlane:
			xplanePaths = append(xplanePaths, path.Join(runDir, name))
		case catalog.FormatHLOProto, catalog.FormatNone:
			continue
		default:
			id := string(format)
			tools[id] = true
			found[catalog.ParseTool(id).Base] = true
		}
	}
	if len(xplanePaths) > 0 {
		if runDir == "" {
			for _, item := range catalog.XPlaneTools {
				if !found[catalog.ParseTool(item).Base] {
					tools[item] = true
				}
			}
		} else if conv == nil {
			logger.Warn("No xplane converter configured, listing directly named tools only", "run_dir", runDir)
		} else if names, err := conv.ToolNames(ctx, xplanePaths); err != nil {
			logger.Warn("Could not enumerate tools from xplane files", "run_dir", runDir, "error", err)
		} else {
			tools = make(map[string]bool, len(names))
			for _, n := range names {
				tools[n] = true
			}
		}
	}
	return ordered(tools)
}

// ordered applies the streaming-supersedes rule and returns the tools
// with overview_page first and the rest sorted ascending.
func ordered(tools map[string]bool) []string {
	for id := range tools {
		if t := catalog.ParseTool(id); t.Variant == catalog.VariantStreaming {
			delete(tools, t.Base)
		}
	}
	var front, rest []string
	for id := range tools {
		if id == catalog.OverviewPage {
			front = append(front, id)
		} else {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(front, rest...)
}

// Hosts computes the ordered host list for a run's filenames and a
// tool. For HLO tools only hlo_proto filenames are considered and
// module names take the place of hosts. With more than one distinct
// host, all-hosts-only tools collapse to the ALL_HOSTS sentinel and
// all-hosts-supported tools gain it alongside the individual hosts.
// The sentinel sorts as an ordinary string.
func Hosts(filenames []string, tool string) []string {
	hloOnly := catalog.UsesHLO(tool)
	hosts := make(map[string]bool)
	for _, name := range filenames {
		host, format := catalog.ParseFilename(name)
		if hloOnly && format != catalog.FormatHLOProto {
			continue
		}
		if host != "" {
			hosts[host] = true
		}
	}
	if len(hosts) > 1 {
		if catalog.AllHostsOnly[tool] {
			return []string{catalog.AllHosts}
		}
		if catalog.AllHostsSupported[tool] {
			hosts[catalog.AllHosts] = true
		}
	}
	out := make([]string, 0, len(hosts))
	for h := range hosts {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Modules returns the module names encoded in a run's hlo_proto
// filenames, in listing order.
func Modules(filenames []string) []string {
	var modules []string
	for _, name := range filenames {
		host, format := catalog.ParseFilename(name)
		if format == catalog.FormatHLOProto && host != "" {
			modules = append(modules, host)
		}
	}
	return modules
}

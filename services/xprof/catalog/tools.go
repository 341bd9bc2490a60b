// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package catalog holds the static classification of profiling tools and
// the filename convention used inside profile run directories.
//
// A run directory contains files named `[host.]extension`. The extension
// identifies a data format, not an individual tool: a single xplane.pb
// file can back many visualization tools, while hlo_proto.pb files back
// the module-graph tools. Everything else in a run directory is opaque.
package catalog

import "strings"

// Format identifies the on-disk data format encoded in a filename
// extension.
type Format string

const (
	// FormatNone means the filename did not match any known extension.
	FormatNone Format = ""

	// FormatXPlane is the consolidated per-run binary format. Most tools
	// are derived from it by conversion.
	FormatXPlane Format = "xplane"

	// FormatHLOProto is the per-module binary format backing the
	// module-graph tools.
	FormatHLOProto Format = "hlo_proto"
)

// Filename extensions for each format. These are the only extensions the
// codec recognizes; see ParseFilename for how everything else is treated.
const (
	XPlaneExtension   = "xplane.pb"
	HLOProtoExtension = "hlo_proto.pb"
)

// formatExtensions maps a format name to its filename extension.
var formatExtensions = map[string]string{
	string(FormatXPlane):   XPlaneExtension,
	string(FormatHLOProto): HLOProtoExtension,
}

// AllHosts is the sentinel host name representing all hosts aggregated
// into one synthetic view.
const AllHosts = "ALL_HOSTS"

// StreamingSuffix marks the streaming variant of a tool. The streaming
// variant supersedes the non-streaming variant of the same base name.
const StreamingSuffix = "@"

// OverviewPage sorts to the front of every resolved tool list.
const OverviewPage = "overview_page"

// XPlaneTools is the ordered list of tools that can be generated from an
// xplane.pb file.
var XPlaneTools = []string{
	"trace_viewer",  // non-streaming, pre-2.13 profilers
	"trace_viewer@", // streaming, 2.14 and later
	"overview_page",
	"input_pipeline_analyzer",
	"framework_op_stats",
	"kernel_stats",
	"memory_profile",
	"pod_viewer",
	"op_profile",
	"hlo_stats",
	"roofline_model",
	"inference_profile",
	"memory_viewer",
	"graph_viewer",
	"megascale_stats",
}

// xplaneToolSet is XPlaneTools as a membership set.
var xplaneToolSet = func() map[string]bool {
	s := make(map[string]bool, len(XPlaneTools))
	for _, t := range XPlaneTools {
		s[t] = true
	}
	return s
}()

// AllHostsSupported lists the xplane tools that offer an aggregated
// all-hosts view in addition to per-host views.
var AllHostsSupported = map[string]bool{
	"input_pipeline_analyzer": true,
	"framework_op_stats":      true,
	"kernel_stats":            true,
	"overview_page":           true,
	"pod_viewer":              true,
	"megascale_stats":         true,
}

// AllHostsOnly lists the xplane tools that only offer the aggregated
// all-hosts view, never a per-host one.
var AllHostsOnly = map[string]bool{
	"overview_page": true,
	"pod_viewer":    true,
}

// hloTools lists the tools derived from hlo_proto.pb files. For these,
// module names take the place of host names.
var hloTools = map[string]bool{
	"graph_viewer":  true,
	"memory_viewer": true,
}

// UsesXPlane reports whether the tool is derived from the consolidated
// xplane format.
func UsesXPlane(tool string) bool {
	return xplaneToolSet[tool]
}

// UsesHLO reports whether the tool is derived from per-module hlo_proto
// files.
func UsesHLO(tool string) bool {
	return hloTools[tool]
}

// Variant distinguishes naming generations of the same base tool.
type Variant int

const (
	// VariantPlain is a tool identifier without any suffix marker.
	VariantPlain Variant = iota

	// VariantStreaming is the streaming generation of a tool. It is
	// marked with a trailing '@' and supersedes the plain variant.
	VariantStreaming
)

// Tool is a tool identifier with its variant resolved, so callers do not
// re-parse suffix markers at every use site.
type Tool struct {
	Base    string
	Variant Variant
}

// ParseTool splits a raw tool identifier into its base name and variant.
func ParseTool(id string) Tool {
	if base, ok := strings.CutSuffix(id, StreamingSuffix); ok {
		return Tool{Base: base, Variant: VariantStreaming}
	}
	return Tool{Base: id}
}

// String reassembles the raw identifier, suffix marker included.
func (t Tool) String() string {
	if t.Variant == VariantStreaming {
		return t.Base + StreamingSuffix
	}
	return t.Base
}

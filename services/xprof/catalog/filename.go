// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import "strings"

// MakeFilename returns the run-directory filename holding data for the
// given host and tool, e.g. ("localhost", "trace_viewer") becomes
// "localhost.xplane.pb".
//
// Tools in the hlo_proto family share the hlo_proto.pb extension and
// tools in the xplane family share the xplane.pb extension, regardless
// of the literal tool name. An empty host yields a run-scoped filename
// with no host prefix.
func MakeFilename(host, tool string) string {
	prefix := ""
	if host != "" {
		prefix = host + "."
	}
	switch {
	case UsesHLO(tool):
		tool = string(FormatHLOProto)
	case UsesXPlane(tool):
		tool = string(FormatXPlane)
	}
	ext, ok := formatExtensions[tool]
	if !ok {
		ext = tool
	}
	return prefix + ext
}

// ParseFilename decodes the host and data format encoded in a run
// directory filename.
//
// The grammar is `(<host>.)?<extension>` where the extension is one of
// the catalog extensions. A filename whose extension is not recognized
// decodes as (whole filename, FormatNone): the entire name is treated as
// an opaque host with no tool, so stray files never break discovery.
// Decoding a consolidated-binary file yields only the generic format
// marker, never an individual tool name; callers interpret the format
// via the resolver.
func ParseFilename(filename string) (host string, format Format) {
	for name, ext := range formatExtensions {
		if filename == ext {
			return "", Format(name)
		}
		if h, ok := strings.CutSuffix(filename, "."+ext); ok {
			return h, Format(name)
		}
	}
	return filename, FormatNone
}

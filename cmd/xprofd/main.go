// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command xprofd serves profiling-run discovery for a log directory.
//
// The daemon scans a local or gs:// log directory for profile runs,
// resolves the visualization tools and hosts each run offers, and
// exposes them over HTTP for the profiler frontend.
//
// Usage:
//
//	xprofd serve --logdir /tmp/logs
//	xprofd serve --logdir gs://my-bucket/experiments --listen :6006
//	xprofd runs --logdir /tmp/logs
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package xprof

import "errors"

// Sentinel errors for the profile service.
var (
	// ErrNoConverter indicates a data request needed the xplane
	// converter but none is configured.
	ErrNoConverter = errors.New("no xplane converter configured")

	// ErrAssetNotFound indicates a requested xplane asset path does not
	// exist in the run directory.
	ErrAssetNotFound = errors.New("asset path does not exist")

	// ErrNoData indicates the requested tool has no servable data for
	// this run.
	ErrNoData = errors.New("no data for tool")
)

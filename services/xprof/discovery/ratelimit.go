// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package discovery

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Rate limiter defaults, sized against the GCS rate quota of 1000 list
// requests per minute
// (https://cloud.google.com/storage/quotas#rate-quotas), divided by an
// assumed average of 10 subdirectories per listed directory so a full
// tree walk stays under the quota.
const (
	DefaultMaxRequests = 1000
	DefaultWindow      = time.Minute
	DefaultFanout      = 10
)

// Limiter bounds the rate of directory listing calls issued during a
// tree walk. When the budget is exhausted the caller is suspended, not
// failed, until the window admits the next call.
//
// A nil *Limiter admits every call immediately.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter creates a limiter admitting maxRequests/fanout listing
// calls per window. Non-positive arguments fall back to the defaults so
// a zero-value config still yields a quota-safe limiter.
func NewLimiter(maxRequests int, window time.Duration, fanout int) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if fanout <= 0 {
		fanout = DefaultFanout
	}
	calls := maxRequests / fanout
	if calls < 1 {
		calls = 1
	}
	return &Limiter{
		bucket: rate.NewLimiter(rate.Every(window/time.Duration(calls)), calls),
	}
}

// Wait blocks until the limiter admits one more listing call, or until
// the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.bucket.Wait(ctx)
}

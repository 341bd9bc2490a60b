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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// Tracer for discovery passes.
var discoveryTracer = otel.Tracer("aleutian.xprof.discovery")

// Prometheus metrics for tree walking and run discovery.
var (
	listCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xprof_discovery_list_calls_total",
		Help: "Directory listing calls by outcome",
	}, []string{"status"})

	walkDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "xprof_discovery_pass_duration_seconds",
		Help:    "Wall time of full discovery passes",
		Buckets: []float64{0.01, 0.05, 0.25, 1, 5, 15, 60, 300},
	})

	runsLastPass = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "xprof_discovery_runs_last_pass",
		Help: "Frontend runs yielded by the most recent discovery pass",
	})

	passesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xprof_discovery_passes_total",
		Help: "Completed discovery passes",
	})
)

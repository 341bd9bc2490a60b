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

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RegisterRoutes registers the profile plugin routes with the router
// group.
//
// Endpoints:
//
//	GET /plugins/profile/runs        - list frontend run names
//	GET /plugins/profile/run_tools   - list tools for ?run=
//	GET /plugins/profile/hosts       - list hosts for ?run=&tag=
//	GET /plugins/profile/module_list - list HLO modules for ?run=
//	GET /plugins/profile/data        - tool payload for ?run=&tag=&host=
//	GET /plugins/profile/health      - liveness
//	GET /plugins/profile/ready       - readiness (any run discovered)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	profile := rg.Group("/plugins/profile")
	{
		profile.GET("/runs", handlers.HandleRuns)
		profile.GET("/run_tools", handlers.HandleRunTools)
		profile.GET("/hosts", handlers.HandleHosts)
		profile.GET("/module_list", handlers.HandleModuleList)
		profile.GET("/data", handlers.HandleData)
		profile.GET("/health", handlers.HandleHealth)
		profile.GET("/ready", handlers.HandleReady)
	}
}

// NewRouter builds the service router with telemetry and request
// logging middleware plus a Prometheus scrape endpoint.
func NewRouter(svc *Service, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("xprofd"))
	router.Use(RequestLogger(logger))
	RegisterRoutes(&router.RouterGroup, NewHandlers(svc))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

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
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/xprofd/services/xprof/catalog"
	"github.com/AleutianAI/xprofd/services/xprof/discovery"
	"github.com/AleutianAI/xprofd/services/xprof/resolve"
)

// Handlers contains the HTTP handlers for the profile plugin routes.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleRuns serves the full list of frontend run names.
func (h *Handlers) HandleRuns(c *gin.Context) {
	runs := h.svc.Runs(c.Request.Context())
	if runs == nil {
		runs = []string{}
	}
	respondJSON(c, http.StatusOK, runs)
}

// runQuery identifies a run for the per-run routes.
type runQuery struct {
	Run string `form:"run" binding:"required"`
}

// HandleRunTools serves the ordered tool list for one run.
func (h *Handlers) HandleRunTools(c *gin.Context) {
	var q runQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond(c, http.StatusBadRequest, "text/plain", []byte(err.Error()), "")
		return
	}
	tools, err := h.svc.RunTools(c.Request.Context(), q.Run)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if tools == nil {
		tools = []string{}
	}
	respondJSON(c, http.StatusOK, tools)
}

// hostsQuery identifies a run and tool for the hosts route. The tool is
// carried in the tag parameter for frontend compatibility.
type hostsQuery struct {
	Run string `form:"run" binding:"required"`
	Tag string `form:"tag" binding:"required"`
}

// HandleHosts serves the host list for a run and tool.
func (h *Handlers) HandleHosts(c *gin.Context) {
	var q hostsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond(c, http.StatusBadRequest, "text/plain", []byte(err.Error()), "")
		return
	}
	hosts, err := h.svc.Hosts(c.Request.Context(), q.Run, q.Tag)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, hosts)
}

// HandleModuleList serves the comma-joined HLO module names of a run.
func (h *Handlers) HandleModuleList(c *gin.Context) {
	var q runQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond(c, http.StatusBadRequest, "text/plain", []byte(err.Error()), "")
		return
	}
	modules, err := h.svc.ModuleList(c.Request.Context(), q.Run)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "text/plain", []byte(modules), "")
}

// HandleData serves the rendered payload for a run, tool and host.
func (h *Handlers) HandleData(c *gin.Context) {
	var q hostsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond(c, http.StatusBadRequest, "text/plain", []byte(err.Error()), "")
		return
	}
	req := DataRequest{
		Run:    q.Run,
		Tool:   q.Tag,
		Host:   c.Query("host"),
		Params: h.dataParams(c),
	}
	data, contentType, err := h.svc.Data(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			respond(c, http.StatusNotFound, "text/plain", []byte("No Data"), "")
			return
		}
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, contentType, data, "")
}

// HandleHealth reports liveness.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": ServiceVersion})
}

// HandleReady reports whether any profile run has been discovered.
func (h *Handlers) HandleReady(c *gin.Context) {
	if !h.svc.Active(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "no profile data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// dataParams assembles converter options from request parameters.
func (h *Handlers) dataParams(c *gin.Context) resolve.Params {
	params := resolve.Params{
		ModuleName:     c.Query("module_name"),
		TQX:            c.Query("tqx"),
		UseSavedResult: c.DefaultQuery("use_saved_result", "true") != "false",
		MemorySpace:    c.DefaultQuery("memory_space", "0"),
	}
	tool := c.Query("tag")
	if tool == "memory_viewer" && c.Query("view_memory_allocation_timeline") != "" {
		params.ViewMemoryAllocationTimeline = true
	}
	if catalog.ParseTool(tool).Variant == catalog.VariantStreaming {
		options := map[string]any{
			"resolution": c.DefaultQuery("resolution", "8000"),
		}
		if v := c.Query("start_time_ms"); v != "" {
			options["start_time_ms"] = v
		}
		if v := c.Query("end_time_ms"); v != "" {
			options["end_time_ms"] = v
		}
		params.TraceViewerOptions = options
	}
	graphWidth := 3
	if w, err := strconv.Atoi(c.Query("graph_width")); err == nil {
		graphWidth = w
	}
	params.GraphViewerOptions = map[string]any{
		"node_name":     c.Query("node_name"),
		"module_name":   c.Query("module_name"),
		"graph_width":   graphWidth,
		"show_metadata": boolToInt(c.Query("show_metadata") == "true"),
		"merge_fusion":  boolToInt(c.Query("merge_fusion") == "true"),
		"format":        c.Query("format"),
		"type":          c.Query("type"),
	}
	return params
}

// respondError maps service errors to status codes. Unknown run names
// are the caller's fault; everything else is a server-side failure.
func (h *Handlers) respondError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, discovery.ErrRunNotFound) {
		code = http.StatusNotFound
	}
	respond(c, code, "text/plain", []byte(err.Error()), "")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

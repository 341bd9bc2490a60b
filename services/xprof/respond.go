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
	"bytes"
	"compress/gzip"
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
)

// contentSecurityPolicy is sent on every plugin response. The gstatic
// and jsdelivr entries are needed by the trace viewer and the
// hlo_graph_dumper html format.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self' 'unsafe-eval' 'unsafe-inline' https://www.gstatic.com",
	"object-src 'none'",
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com https://www.gstatic.com",
	"font-src 'self' https://fonts.googleapis.com https://fonts.gstatic.com data:",
	"connect-src 'self' data: www.gstatic.com",
	"img-src 'self' blob: data:",
	"script-src-elem 'self' 'unsafe-inline' https://cdn.jsdelivr.net/npm/ https://www.gstatic.com",
}, ";")

// respond writes a plugin response with the security headers the
// frontend expects. When no content encoding is supplied the body is
// gzip-compressed and marked as such.
func respond(c *gin.Context, code int, contentType string, body []byte, contentEncoding string) {
	c.Header("Content-Security-Policy", contentSecurityPolicy)
	c.Header("X-Content-Type-Options", "nosniff")
	if contentEncoding == "" {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, _ = zw.Write(body)
		_ = zw.Close()
		body = buf.Bytes()
		contentEncoding = "gzip"
	}
	c.Header("Content-Encoding", contentEncoding)
	c.Data(code, contentType, body)
}

// respondJSON marshals v and responds with application/json.
func respondJSON(c *gin.Context, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		respond(c, 500, "text/plain", []byte(err.Error()), "")
		return
	}
	respond(c, code, "application/json", body, "")
}

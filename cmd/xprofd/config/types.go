// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

// XprofdConfig is the full daemon configuration.
type XprofdConfig struct {
	// Logdir is the root log directory holding profile runs. Either a
	// local path or a gs://bucket/prefix URL.
	Logdir string `yaml:"logdir" validate:"required"`

	// Listen is the host:port the HTTP server binds to.
	Listen string `yaml:"listen" validate:"required,hostname_port"`

	// CredentialsPath optionally points at a GCP service account key
	// for gs:// logdirs.
	CredentialsPath string `yaml:"credentials_path,omitempty"`

	// Watch enables filesystem watching for local logdirs so new runs
	// are discovered without waiting for a request.
	Watch bool `yaml:"watch"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RateLimitConfig throttles remote storage listing during discovery.
type RateLimitConfig struct {
	// MaxRequests is the storage request budget per window.
	MaxRequests int `yaml:"max_requests" validate:"min=0"`

	// WindowSeconds is the budget window length.
	WindowSeconds int `yaml:"window_seconds" validate:"min=0"`

	// DirFanout is the assumed average number of storage requests one
	// directory listing triggers.
	DirFanout int `yaml:"dir_fanout" validate:"min=0"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Dir enables file logging when set.
	Dir string `yaml:"dir,omitempty"`

	// JSON switches stderr output to JSON format.
	JSON bool `yaml:"json"`
}

// TelemetryConfig selects trace and metric exporters.
type TelemetryConfig struct {
	// TraceExporter is one of otlp, stdout, none.
	TraceExporter string `yaml:"trace_exporter" validate:"omitempty,oneof=otlp stdout none"`

	// MetricExporter is one of prometheus, stdout, none.
	MetricExporter string `yaml:"metric_exporter" validate:"omitempty,oneof=prometheus stdout none"`

	// OTLPEndpoint is the OTLP receiver for traces.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() XprofdConfig {
	return XprofdConfig{
		Logdir: "",
		Listen: "localhost:6006",
		Watch:  true,
		RateLimit: RateLimitConfig{
			MaxRequests:   1000,
			WindowSeconds: 60,
			DirFanout:     10,
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
		},
	}
}

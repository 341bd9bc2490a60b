// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/xprofd/cmd/xprofd/config"
	"github.com/AleutianAI/xprofd/pkg/logging"
	"github.com/AleutianAI/xprofd/services/xprof"
)

// --- Global Command Variables ---
var (
	configPath      string
	logdirFlag      string
	listenFlag      string
	credentialsFlag string
	watchFlag       bool
	logLevelFlag    string

	rootCmd = &cobra.Command{
		Use:   "xprofd",
		Short: "A daemon serving profiling-run discovery for a log directory",
		Long: `xprofd scans a local or gs:// log directory for profile runs and
serves the run list, per-run tools, hosts and tool payloads over HTTP.`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe, // Defined in cmd_serve.go
	}

	runsCmd = &cobra.Command{
		Use:   "runs",
		Short: "Run one discovery pass and print the frontend run names",
		RunE:  runRuns, // Defined in cmd_runs.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.xprofd/xprofd.yaml)")
	rootCmd.PersistentFlags().StringVar(&logdirFlag, "logdir", "", "Log directory root (local path or gs://bucket/prefix)")
	rootCmd.PersistentFlags().StringVar(&credentialsFlag, "credentials", "", "GCP service account key file for gs:// logdirs")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	serveCmd.Flags().StringVar(&listenFlag, "listen", "", "Listen address, host:port")
	serveCmd.Flags().BoolVar(&watchFlag, "watch", false, "Watch a local logdir for new runs")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
}

// loadConfig loads the YAML config and layers flag overrides on top.
func loadConfig(cmd *cobra.Command) (config.XprofdConfig, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.XprofdConfig{}, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if logdirFlag != "" {
		cfg.Logdir = logdirFlag
	}
	if credentialsFlag != "" {
		cfg.CredentialsPath = credentialsFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	if listenFlag != "" {
		cfg.Listen = listenFlag
	}
	if cmd.Flags().Changed("watch") {
		cfg.Watch = watchFlag
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w (set logdir in the config file or pass --logdir)", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg config.XprofdConfig) *logging.Logger {
	return logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Log.Level),
		LogDir:  cfg.Log.Dir,
		Service: "xprofd",
		JSON:    cfg.Log.JSON,
	})
}

// serviceConfig maps daemon config onto the service layer.
func serviceConfig(cfg config.XprofdConfig) xprof.ServiceConfig {
	return xprof.ServiceConfig{
		Logdir:          cfg.Logdir,
		CredentialsPath: cfg.CredentialsPath,
		MaxListRequests: cfg.RateLimit.MaxRequests,
		ListWindow:      time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		DirFanout:       cfg.RateLimit.DirFanout,
	}
}

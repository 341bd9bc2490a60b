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
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/xprofd/services/xprof"
)

// runRuns performs one discovery pass and prints the frontend run
// names, one per line. Useful for smoke-testing a logdir before
// pointing the frontend at it.
func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := xprof.NewService(ctx, serviceConfig(cfg), logger.Slog())
	if err != nil {
		return fmt.Errorf("failed to create profile service: %w", err)
	}

	runs := svc.Runs(ctx)
	if len(runs) == 0 {
		fmt.Println("No profile runs found")
		return nil
	}
	for _, run := range runs {
		fmt.Println(run)
	}
	return nil
}

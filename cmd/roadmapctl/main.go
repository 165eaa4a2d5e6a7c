// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// roadmapctl is the operator CLI for the roadmap service. It speaks to a
// running instance over its HTTP API; it never touches the cache files or
// the warehouse directly.
package main

import (
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	httpTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "roadmapctl",
	Short: "Administer a running roadmap service",
	Long: `roadmapctl administers a running roadmap service over HTTP.

Examples:
  roadmapctl status                         # Liveness and warehouse reachability
  roadmapctl cache stats                    # Tier availability and occupancy
  roadmapctl cache clear                    # Drop both cache tiers
  roadmapctl cache clear --pattern hier     # Drop matching fast-tier keys`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		envOr("ROADMAP_SERVER_URL", "http://localhost:8092"),
		"Base URL of the roadmap service")
	rootCmd.PersistentFlags().DurationVar(&httpTimeout, "timeout",
		30*time.Second, "HTTP request timeout")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

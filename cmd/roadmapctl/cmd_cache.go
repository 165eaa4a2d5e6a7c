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
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

var clearPattern string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and invalidate the query cache",
}

// cacheStatsCmd prints the service's cache stats JSON.
//
// # Examples
//
//	roadmapctl cache stats
var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache tier availability and occupancy",
	Run: func(cmd *cobra.Command, args []string) {
		body, status, err := httpGet("/v1/cache/stats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if status != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: service returned %d: %s\n", status, body)
			os.Exit(1)
		}
		fmt.Println(summarize(body))
	},
}

// cacheClearCmd invalidates cached query results.
//
// Without --pattern both tiers are emptied. With --pattern only fast-tier
// keys containing the substring are dropped; durable entries age out by TTL.
//
// # Examples
//
//	roadmapctl cache clear
//	roadmapctl cache clear --pattern hierarchy
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Invalidate cached query results",
	Run: func(cmd *cobra.Command, args []string) {
		path := "/v1/cache"
		if clearPattern != "" {
			path += "?pattern=" + url.QueryEscape(clearPattern)
		}

		req, err := http.NewRequest(http.MethodDelete, serverURL+path, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		client := &http.Client{Timeout: httpTimeout}
		resp, err := client.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: service returned %d\n", resp.StatusCode)
			os.Exit(1)
		}
		if clearPattern != "" {
			fmt.Printf("Cleared fast-tier keys matching %q\n", clearPattern)
			return
		}
		fmt.Println("Cleared all cache tiers")
	},
}

func init() {
	cacheClearCmd.Flags().StringVar(&clearPattern, "pattern", "",
		"Only clear fast-tier keys containing this substring")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

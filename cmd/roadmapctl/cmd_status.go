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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

// statusCmd checks service liveness and warehouse reachability in one shot.
//
// # Examples
//
//	roadmapctl status
//	roadmapctl status --server http://roadmap.internal:8092
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service liveness and warehouse connectivity",
	Run:   runStatusCommand,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCommand(cmd *cobra.Command, args []string) {
	body, status, err := httpGet("/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "service: unreachable (%v)\n", err)
		os.Exit(1)
	}
	fmt.Printf("service:   %s (%d)\n", summarize(body), status)

	body, status, err = httpGet("/v1/connection/test")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warehouse: unreachable (%v)\n", err)
		os.Exit(1)
	}
	fmt.Printf("warehouse: %s (%d)\n", summarize(body), status)
	if status != http.StatusOK {
		os.Exit(1)
	}
}

// httpGet performs a GET against the configured server and returns the raw
// body and status code.
func httpGet(path string) ([]byte, int, error) {
	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Get(serverURL + path)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// summarize compacts a JSON body onto one line, falling back to the raw text.
func summarize(body []byte) string {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	compact, err := json.Marshal(v)
	if err != nil {
		return string(body)
	}
	return string(compact)
}

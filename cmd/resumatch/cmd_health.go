// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/resumatch/resumatch-cli/pkg/datatypes"
)

// runHealthCommand probes the backend's health endpoint.
func runHealthCommand(cmd *cobra.Command, args []string) error {
	client := NewHTTPClient(10 * time.Second)

	resp, err := client.Get(cmd.Context(), baseURL+"/health")
	if err != nil {
		return fmt.Errorf("backend unreachable at %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend unhealthy: status %d", resp.StatusCode)
	}

	var health datatypes.HealthResponse
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("read health response: %w", err)
	}
	if err := json.Unmarshal(body, &health); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if !health.Healthy() {
		return fmt.Errorf("backend reports %q: %s", health.Status, health.Message)
	}

	if GetPersonality() == PersonalityMachine {
		fmt.Println(health.Status)
	} else {
		fmt.Printf("Backend healthy at %s\n", baseURL)
	}
	return nil
}

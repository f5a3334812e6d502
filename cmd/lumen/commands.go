// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/LumenLearn/cmd/lumen/config"
)

var rootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "Operate a LumenLearn client-runtime orchestrator",
	Long: `lumen is the operator CLI for the LumenLearn client-runtime
orchestrator. It inspects subsystem state, the error buffer, and health
summaries, and can trigger a full application restart.`,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the full diagnostic snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient(config.Global.Server)
		var status map[string]any
		if err := client.getJSON(cmd.Context(), "/v1/status", &status); err != nil {
			return err
		}
		return printJSON(status)
	},
}

var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List subsystem initialization records",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient(config.Global.Server)
		var out struct {
			Systems map[string]struct {
				Status     string  `json:"status"`
				DurationMs float64 `json:"durationMs"`
				Error      string  `json:"errorMessage"`
			} `json:"systems"`
		}
		if err := client.getJSON(cmd.Context(), "/v1/systems", &out); err != nil {
			return err
		}
		if len(out.Systems) == 0 {
			fmt.Println("no subsystems recorded yet")
			return nil
		}
		for name, rec := range out.Systems {
			line := fmt.Sprintf("%-20s %-12s %8.1fms", name, rec.Status, rec.DurationMs)
			if rec.Error != "" {
				line += "  " + rec.Error
			}
			fmt.Println(line)
		}
		return nil
	},
}

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Show the captured error buffer",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient(config.Global.Server)
		var out struct {
			Count  int              `json:"count"`
			Errors []map[string]any `json:"errors"`
		}
		if err := client.getJSON(cmd.Context(), "/v1/errors", &out); err != nil {
			return err
		}
		fmt.Printf("%d captured errors\n", out.Count)
		return printJSON(out.Errors)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show the latest health evaluation",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient(config.Global.Server)
		var summary map[string]any
		if err := client.getJSON(cmd.Context(), "/v1/health", &summary); err != nil {
			return err
		}
		return printJSON(summary)
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Re-run the full application bring-up",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient(config.Global.Server)
		var out struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		}
		if err := client.postJSON(cmd.Context(), "/v1/restart", &out); err != nil {
			return err
		}
		if out.Error != "" {
			fmt.Printf("restart left the application degraded: %s\n", out.Error)
			return nil
		}
		fmt.Println("application restarted")
		return nil
	},
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(systemsCmd)
	rootCmd.AddCommand(errorsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(restartCmd)
}

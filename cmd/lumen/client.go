// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lumenlearn/LumenLearn/cmd/lumen/config"
)

// apiClient talks to the orchestrator's status API.
type apiClient struct {
	base  string
	token string
	http  *http.Client
}

func newAPIClient(cfg config.ServerConfig) *apiClient {
	return &apiClient{
		base:  strings.TrimRight(cfg.URL, "/"),
		token: cfg.Token,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// getJSON fetches path and decodes the response into out.
func (c *apiClient) getJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, out)
}

// postJSON posts to path and decodes the response into out.
func (c *apiClient) postJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, out)
}

func (c *apiClient) doJSON(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: server returned %d: %s",
			method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

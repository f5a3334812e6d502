// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the lumen CLI configuration from
// ~/.lumenlearn/lumen.yaml, creating a default file on first run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// Global is a singleton instance
	Global LumenConfig
	once   sync.Once
)

// LumenConfig is the CLI's persisted configuration.
type LumenConfig struct {
	// Server points the CLI at an orchestrator service.
	Server ServerConfig `yaml:"server"`
}

// ServerConfig describes how to reach the orchestrator's status API.
type ServerConfig struct {
	URL            string `yaml:"url" validate:"required,url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=1,lte=120"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() LumenConfig {
	return LumenConfig{
		Server: ServerConfig{
			URL:            "http://localhost:12310",
			TimeoutSeconds: 10,
		},
	}
}

// Load ensures the config is loaded and validated into Global.
func Load() error {
	var err error
	once.Do(func() {
		err = loadInternal()
	})
	return err
}

func loadInternal() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not find the user's home directory: %w", err)
	}
	configPath := filepath.Join(home, ".lumenlearn", "lumen.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("First run detected, creating the config at %s\n", configPath)
		if err := createDefault(configPath); err != nil {
			return err
		}
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read the config file: %w", err)
	}
	if err = yaml.Unmarshal(data, &Global); err != nil {
		return fmt.Errorf("failed to parse the config file: %w", err)
	}
	if err := validator.New().Struct(Global); err != nil {
		return fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}
	return nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	defaultCfg := DefaultConfig()
	data, err := yaml.Marshal(defaultCfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

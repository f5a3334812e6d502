// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:12310", cfg.Server.URL)
	assert.Equal(t, 10, cfg.Server.TimeoutSeconds)
	assert.Empty(t, cfg.Server.Token)
	assert.NoError(t, validator.New().Struct(cfg))
}

func TestDefaultConfig_RoundTripsThroughYAML(t *testing.T) {
	data, err := yaml.Marshal(DefaultConfig())
	require.NoError(t, err)

	var cfg LumenConfig
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestServerConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServerConfig
		wantErr bool
	}{
		{"valid", ServerConfig{URL: "http://localhost:12310", TimeoutSeconds: 10}, false},
		{"with token", ServerConfig{URL: "https://orchestrator.lumenlearn.io", Token: "t", TimeoutSeconds: 30}, false},
		{"missing url", ServerConfig{TimeoutSeconds: 10}, true},
		{"not a url", ServerConfig{URL: "localhost", TimeoutSeconds: 10}, true},
		{"zero timeout", ServerConfig{URL: "http://localhost:12310"}, true},
		{"timeout too large", ServerConfig{URL: "http://localhost:12310", TimeoutSeconds: 500}, true},
	}
	validate := validator.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(LumenConfig{Server: tt.cfg})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_CreatesDefaultOnFirstRun(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, Load())
	assert.Equal(t, "http://localhost:12310", Global.Server.URL)

	configPath := filepath.Join(home, ".lumenlearn", "lumen.yaml")
	_, err := os.Stat(configPath)
	assert.NoError(t, err)

	// Load is once-per-process; a second call is a no-op.
	assert.NoError(t, Load())
}

// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for
// security-critical operations.
//
// This package contains validators for user-provided inputs that end up in
// storage keys, analytics tags, or log lines. Using these validators keeps
// injection and key-collision bugs out of those sinks.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// systemNamePattern matches valid subsystem and collaborator names.
// Allows: a leading letter, then letters, digits, hyphens, underscores.
// Max length: 64 characters.
var systemNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_\-]{0,63}$`)

// ValidateSystemName validates a subsystem name before it is used as a
// registry key, analytics tag, or storage key component.
//
// Valid names:
//   - 1-64 characters
//   - start with a letter
//   - letters, digits, underscores, and hyphens thereafter
//
// Example:
//
//	if err := validation.ValidateSystemName(name); err != nil {
//	    return fmt.Errorf("invalid system name: %w", err)
//	}
func ValidateSystemName(name string) error {
	if name == "" {
		return fmt.Errorf("system name cannot be empty")
	}
	if !systemNamePattern.MatchString(name) {
		return fmt.Errorf("invalid system name: %q (must be 1-64 chars, start with a letter, then letters, digits, hyphens, or underscores)", name)
	}
	return nil
}

// ValidateSystemNames validates multiple subsystem names. Returns an error
// listing every invalid name if any fail validation.
func ValidateSystemNames(names []string) error {
	var invalid []string
	for _, name := range names {
		if err := ValidateSystemName(name); err != nil {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid system names: %v", invalid)
	}
	return nil
}

// SanitizeEventName normalizes an analytics event name: trimmed,
// lowercased, spaces replaced with underscores, then validated.
func SanitizeEventName(name string) (string, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	if err := ValidateSystemName(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

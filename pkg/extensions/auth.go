// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrUnauthorized is returned when authentication fails. Implementations
// should wrap this error with additional context.
var ErrUnauthorized = errors.New("unauthorized")

// AuthInfo contains identity information returned after successful
// authentication. UserID is always populated; the rest may be empty.
type AuthInfo struct {
	UserID string
	Email  string
	Roles  []string
}

// HasRole checks if the user has a specific role.
func (a *AuthInfo) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthProvider validates authentication tokens and returns user identity.
//
// The default NopAuthProvider always returns a valid local operator, so the
// orchestrator works with no authentication infrastructure. Deployments
// validate tokens against their identity provider by implementing this
// interface.
type AuthProvider interface {
	// Validate checks the token and returns the user's identity, or an
	// error wrapping ErrUnauthorized when the token is invalid.
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// NopAuthProvider accepts every token, including the empty one, and
// returns the local operator with admin privileges.
type NopAuthProvider struct{}

// Validate always succeeds.
func (p *NopAuthProvider) Validate(_ context.Context, _ string) (*AuthInfo, error) {
	return &AuthInfo{
		UserID: "local-operator",
		Roles:  []string{"admin"},
	}, nil
}

// StaticTokenProvider accepts exactly one pre-shared token. Suitable for
// single-operator deployments where a full identity provider is overkill.
type StaticTokenProvider struct {
	Token string
}

// Validate compares the presented token in constant time.
func (p *StaticTokenProvider) Validate(_ context.Context, token string) (*AuthInfo, error) {
	if p.Token == "" {
		return nil, errors.New("static token provider configured without a token")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(p.Token)) != 1 {
		return nil, ErrUnauthorized
	}
	return &AuthInfo{
		UserID: "operator",
		Roles:  []string{"admin"},
	}, nil
}

// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package simhost

import (
	"context"
	"sync"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime"
)

// MemStorage is a map-backed runtime.Storage for tests and the simulated
// binary. ClearErr, when set, is returned by Clear to exercise the
// interceptor's recovery error path.
type MemStorage struct {
	mu       sync.Mutex
	data     map[string][]byte
	ClearErr error
	clears   int
}

// NewMemStorage returns an empty store.
func NewMemStorage() *MemStorage {
	return &MemStorage{data: make(map[string][]byte)}
}

// Get returns the value for key, or runtime.ErrKeyNotFound.
func (s *MemStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	if !ok {
		return nil, runtime.ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a copy of value under key.
func (s *MemStorage) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *MemStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Clear empties the store.
func (s *MemStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.data = make(map[string][]byte)
	return nil
}

// Close is a no-op.
func (s *MemStorage) Close() error { return nil }

// Clears returns how many times Clear has been called.
func (s *MemStorage) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

// Len returns the number of stored keys.
func (s *MemStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

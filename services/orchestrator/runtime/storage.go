// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runtime

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Storage.Get for absent keys.
var ErrKeyNotFound = errors.New("storage: key not found")

// Storage is the persistent key-value capability.
//
// Clear is the nuclear option: the fault interceptor invokes it (followed by
// Reload) when a script fault implicates the storage layer.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

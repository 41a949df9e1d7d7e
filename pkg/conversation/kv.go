// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package conversation

import "sync"

// KV is the persistence adapter behind the conversation store.
//
// The store never talks to a database directly; it reads and writes whole
// values under fixed keys through this interface. The production adapter
// is BadgerKV; tests use MemoryKV.
//
// Thread Safety:
//
//	Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value for key. found is false when the key has
	// never been written.
	Get(key string) (value []byte, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
}

// =============================================================================
// In-Memory Adapter
// =============================================================================

// memoryKV is a map-backed KV for tests and ephemeral sessions.
type memoryKV struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// NewMemoryKV creates an empty in-memory adapter.
func NewMemoryKV() KV {
	return &memoryKV{m: make(map[string][]byte)}
}

func (s *memoryKV) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *memoryKV) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	s.m[key] = v
	return nil
}

var _ KV = (*memoryKV)(nil)

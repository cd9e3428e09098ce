// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package audit

import (
	"context"
	"sync"
)

// Store persists audit entries. Implementations must preserve append
// order per scope and never mutate stored entries.
type Store interface {
	// Append durably records an entry at the end of its scope's chain.
	Append(ctx context.Context, entry Entry) error

	// Tail returns the most recently appended entry for a scope.
	// The bool is false when the scope has no entries.
	Tail(ctx context.Context, scope string) (Entry, bool, error)

	// List returns all entries for a scope in append order.
	List(ctx context.Context, scope string) ([]Entry, error)
}

// MemoryStore is an in-memory Store for tests and single-process use.
type MemoryStore struct {
	mu     sync.RWMutex
	chains map[string][]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chains: make(map[string][]Entry)}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains[entry.OrgID] = append(s.chains[entry.OrgID], entry)
	return nil
}

// Tail implements Store.
func (s *MemoryStore) Tail(_ context.Context, scope string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain := s.chains[scope]
	if len(chain) == 0 {
		return Entry{}, false, nil
	}
	return chain[len(chain)-1], true, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, scope string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain := s.chains[scope]
	out := make([]Entry, len(chain))
	copy(out, chain)
	return out, nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package audit maintains the tamper-evident evaluation log.
//
// Every entry's hash is computed over the previous entry's hash, so
// any retroactive edit to a stored entry breaks recomputation from
// genesis. Chains are scoped (one chain per organization); appends
// within a scope are serialized through a per-scope writer, while
// different scopes append in parallel.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/proofdesk/pkg/logging"
	"github.com/AleutianAI/proofdesk/services/evaluation/telemetry"
)

// GenesisHash is the sentinel prev_hash of the first entry in a chain.
const GenesisHash = "genesis"

var (
	// ErrChainMismatch reports that recomputing a chain from genesis
	// diverged from the stored hashes. This is fatal: it signals
	// storage corruption or tampering.
	ErrChainMismatch = errors.New("audit chain hash mismatch")

	// ErrEmptyEventType rejects appends with no event type.
	ErrEmptyEventType = errors.New("event type must not be empty")
)

// Entry is one write-once record in a chain. Exposed as-is to
// verification tooling; there is no update or delete.
type Entry struct {
	ID        string          `json:"id"`
	OrgID     string          `json:"org_id,omitempty"`
	Actor     string          `json:"actor,omitempty"`
	EventType string          `json:"event_type"`
	EventJSON json.RawMessage `json:"event_json"`
	PrevHash  string          `json:"prev_hash"`
	EventHash string          `json:"event_hash"`
	CreatedAt time.Time       `json:"created_at"`
}

// canonicalJSON renders v with deterministic key order so the same
// event always hashes identically regardless of source field order.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("canonicalize event: %w", err)
	}
	// encoding/json emits map keys in sorted order.
	return json.Marshal(decoded)
}

// ComputeHash returns hex(SHA256(prevHash + ":" + canonicalEvent)).
func ComputeHash(prevHash string, canonicalEvent []byte) string {
	h := sha256.New()
	h.Write([]byte(prevHash))
	h.Write([]byte(":"))
	h.Write(canonicalEvent)
	return hex.EncodeToString(h.Sum(nil))
}

// chainState is the cached tail of one scope. Guarded by its own
// mutex so scopes never contend with each other.
type chainState struct {
	mu       sync.Mutex
	tailHash string
	loaded   bool
}

// Logger appends hash-chained entries to a Store.
//
// Thread Safety: safe for concurrent use. Appends to the same scope
// are serialized; appends to different scopes proceed in parallel.
type Logger struct {
	store Store
	log   *logging.Logger

	mu     sync.Mutex
	chains map[string]*chainState
}

// NewLogger creates an audit logger over the given store.
func NewLogger(store Store, log *logging.Logger) *Logger {
	if log == nil {
		log = logging.Discard()
	}
	return &Logger{
		store:  store,
		log:    log,
		chains: make(map[string]*chainState),
	}
}

func (l *Logger) chain(scope string) *chainState {
	l.mu.Lock()
	defer l.mu.Unlock()
	cs, ok := l.chains[scope]
	if !ok {
		cs = &chainState{}
		l.chains[scope] = cs
	}
	return cs
}

// Append records an event on the scope's chain and returns the stored
// entry. The scope is the chain key (typically the organization ID;
// empty string is a valid scope with its own chain).
//
// The tail hash is read from the store on first use of a scope and
// cached thereafter; every append advances the cache under the
// scope's lock, so concurrent appends cannot fork the chain.
func (l *Logger) Append(ctx context.Context, scope, eventType string, event any, actor string) (Entry, error) {
	if eventType == "" {
		return Entry{}, ErrEmptyEventType
	}
	canonical, err := canonicalJSON(event)
	if err != nil {
		return Entry{}, err
	}

	cs := l.chain(scope)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.loaded {
		tail, ok, err := l.store.Tail(ctx, scope)
		if err != nil {
			return Entry{}, fmt.Errorf("load chain tail for scope %q: %w", scope, err)
		}
		if ok {
			cs.tailHash = tail.EventHash
		} else {
			cs.tailHash = GenesisHash
		}
		cs.loaded = true
	}

	entry := Entry{
		ID:        uuid.NewString(),
		OrgID:     scope,
		Actor:     actor,
		EventType: eventType,
		EventJSON: canonical,
		PrevHash:  cs.tailHash,
		EventHash: ComputeHash(cs.tailHash, canonical),
		CreatedAt: time.Now().UTC(),
	}

	if err := l.store.Append(ctx, entry); err != nil {
		return Entry{}, fmt.Errorf("append audit entry: %w", err)
	}
	cs.tailHash = entry.EventHash

	telemetry.AuditAppends.WithLabelValues(eventType).Inc()
	l.log.Debug("audit entry appended",
		"scope", scope,
		"event_type", eventType,
		"event_hash", entry.EventHash,
	)
	return entry, nil
}

// Verify recomputes the scope's chain from genesis and compares every
// stored hash. Any divergence returns ErrChainMismatch wrapped with
// the offending entry's position and ID.
func (l *Logger) Verify(ctx context.Context, scope string) error {
	entries, err := l.store.List(ctx, scope)
	if err != nil {
		return fmt.Errorf("list chain for scope %q: %w", scope, err)
	}
	return VerifyEntries(entries)
}

// VerifyEntries checks a chain slice in append order against the
// integrity invariant. Usable directly by offline tooling.
func VerifyEntries(entries []Entry) error {
	prev := GenesisHash
	for i, e := range entries {
		if e.PrevHash != prev {
			return fmt.Errorf("entry %d (%s): prev_hash %q does not match preceding hash %q: %w",
				i, e.ID, e.PrevHash, prev, ErrChainMismatch)
		}
		canonical, err := canonicalJSON(e.EventJSON)
		if err != nil {
			return fmt.Errorf("entry %d (%s): %w", i, e.ID, err)
		}
		if recomputed := ComputeHash(e.PrevHash, canonical); recomputed != e.EventHash {
			return fmt.Errorf("entry %d (%s): stored hash %q, recomputed %q: %w",
				i, e.ID, e.EventHash, recomputed, ErrChainMismatch)
		}
		prev = e.EventHash
	}
	return nil
}

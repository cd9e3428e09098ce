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
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// BadgerConfig holds configuration for the embedded audit store.
type BadgerConfig struct {
	// Path is the directory for database files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes. Audit entries are
	// integrity-critical, so this defaults to true in
	// DefaultBadgerConfig.
	SyncWrites bool

	// Logger receives BadgerDB's internal logging. If nil, internal
	// logging is disabled.
	Logger *slog.Logger
}

// DefaultBadgerConfig returns production defaults: durable writes at
// the given path.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{Path: path, SyncWrites: true}
}

// InMemoryBadgerConfig returns a configuration for testing. Data is
// lost on close.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// BadgerStore is a durable Store backed by an embedded BadgerDB.
//
// Keys are laid out as audit/<hex(scope)>/<seq>, with seq a fixed-
// width decimal so lexicographic key order equals append order within
// a scope. Hex-encoding the scope keeps scope names from colliding in
// the key space.
//
// Thread Safety: safe for concurrent use. Per-scope append ordering
// is the Logger's responsibility; the store only persists.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (creating if necessary) the audit database.
// Caller must Close when done.
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func scopePrefix(scope string) []byte {
	return []byte("audit/" + hex.EncodeToString([]byte(scope)) + "/")
}

func entryKey(scope string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", scopePrefix(scope), seq))
}

// nextSeq returns the sequence number the next entry should take,
// found by reverse-seeking to the scope's last key.
func (s *BadgerStore) nextSeq(txn *badger.Txn, scope string) (uint64, error) {
	prefix := scopePrefix(scope)
	itOpts := badger.DefaultIteratorOptions
	itOpts.Reverse = true
	itOpts.PrefetchValues = false
	it := txn.NewIterator(itOpts)
	defer it.Close()

	// Reverse iteration seeks to the largest key <= the seek target;
	// 0xFF caps the prefix above any sequence digit.
	seek := append(append([]byte{}, prefix...), 0xFF)
	it.Seek(seek)
	if !it.ValidForPrefix(prefix) {
		return 0, nil
	}

	key := it.Item().Key()
	var last uint64
	if _, err := fmt.Sscanf(string(key[len(prefix):]), "%d", &last); err != nil {
		return 0, fmt.Errorf("malformed audit key %q: %w", key, err)
	}
	return last + 1, nil
}

// Append implements Store.
func (s *BadgerStore) Append(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		seq, err := s.nextSeq(txn, entry.OrgID)
		if err != nil {
			return err
		}
		return txn.Set(entryKey(entry.OrgID, seq), value)
	})
}

// Tail implements Store.
func (s *BadgerStore) Tail(ctx context.Context, scope string) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, fmt.Errorf("context cancelled: %w", err)
	}

	var (
		entry Entry
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := scopePrefix(scope)
		itOpts := badger.DefaultIteratorOptions
		itOpts.Reverse = true
		it := txn.NewIterator(itOpts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), 0xFF)
		it.Seek(seek)
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		found = true
		return it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("read chain tail: %w", err)
	}
	return entry, found, nil
}

// List implements Store.
func (s *BadgerStore) List(ctx context.Context, scope string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	var entries []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := scopePrefix(scope)
		itOpts := badger.DefaultIteratorOptions
		itOpts.Prefix = prefix
		it := txn.NewIterator(itOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list chain: %w", err)
	}
	return entries, nil
}

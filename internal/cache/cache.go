// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package cache stores fetched transaction XDR on disk so repeated debug
// runs of the same transaction skip the network round trip.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	network         TEXT NOT NULL,
	hash            TEXT NOT NULL,
	envelope_xdr    TEXT NOT NULL,
	result_xdr      TEXT NOT NULL,
	result_meta_xdr TEXT NOT NULL,
	fetched_at      INTEGER NOT NULL,
	PRIMARY KEY (network, hash)
);`

// Transaction is one cached fetch result.
type Transaction struct {
	EnvelopeXdr   string
	ResultXdr     string
	ResultMetaXdr string
}

// Store is a sqlite-backed transaction cache.
type Store struct {
	db *sql.DB
}

// Open creates or opens the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached transaction, or (nil, nil) on a miss.
func (s *Store) Get(network, hash string) (*Transaction, error) {
	row := s.db.QueryRow(
		`SELECT envelope_xdr, result_xdr, result_meta_xdr FROM transactions WHERE network = ? AND hash = ?`,
		network, hash,
	)

	var tx Transaction
	err := row.Scan(&tx.EnvelopeXdr, &tx.ResultXdr, &tx.ResultMetaXdr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}
	return &tx, nil
}

// Put inserts or replaces a cached transaction.
func (s *Store) Put(network, hash string, tx *Transaction) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO transactions (network, hash, envelope_xdr, result_xdr, result_meta_xdr, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		network, hash, tx.EnvelopeXdr, tx.ResultXdr, tx.ResultMetaXdr, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

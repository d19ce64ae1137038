// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"encoding/base64"
	"sort"

	"github.com/stellar/go/xdr"
)

// Field names surfaced in decode errors.
const (
	fieldEnvelope    = "Envelope"
	fieldLedgerKey   = "LedgerKey"
	fieldLedgerEntry = "LedgerEntry"
	fieldResultMeta  = "ResultMeta"
)

// DecodeEnvelope parses a base64 TransactionEnvelope. Decoding is
// all-or-nothing: trailing bytes or a malformed union arm fail the whole
// envelope. No semantic validation happens here.
func DecodeEnvelope(text string) (xdr.TransactionEnvelope, error) {
	var envelope xdr.TransactionEnvelope
	err := decodeXdr(text, fieldEnvelope, &envelope)
	return envelope, err
}

// DecodeLedgerKey parses a base64 LedgerKey.
func DecodeLedgerKey(text string) (xdr.LedgerKey, error) {
	var key xdr.LedgerKey
	err := decodeXdr(text, fieldLedgerKey, &key)
	return key, err
}

// DecodeLedgerEntry parses a base64 LedgerEntry.
func DecodeLedgerEntry(text string) (xdr.LedgerEntry, error) {
	var entry xdr.LedgerEntry
	err := decodeXdr(text, fieldLedgerEntry, &entry)
	return entry, err
}

// DecodeResultMeta parses a base64 TransactionMeta.
func DecodeResultMeta(text string) (xdr.TransactionMeta, error) {
	var meta xdr.TransactionMeta
	err := decodeXdr(text, fieldResultMeta, &meta)
	return meta, err
}

// EncodeEnvelope is the inverse of DecodeEnvelope.
func EncodeEnvelope(envelope xdr.TransactionEnvelope) (string, error) {
	return xdr.MarshalBase64(envelope)
}

func decodeXdr(text, field string, dest interface{}) error {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return &Base64Error{Field: field, Err: err}
	}
	if err := xdr.SafeUnmarshal(raw, dest); err != nil {
		return &XdrFormatError{Field: field, Err: err}
	}
	return nil
}

// SnapshotEntry is one decoded (key, entry) pair. KeyXdr keeps the wire
// encoding the pair was indexed under, which is also the canonical storage
// key the host reads by.
type SnapshotEntry struct {
	KeyXdr string
	Key    xdr.LedgerKey
	Entry  xdr.LedgerEntry
}

// Snapshot is the decoded ledger state for one run, ordered by encoded key.
type Snapshot []SnapshotEntry

// DecodeSnapshot validates and decodes a ledger_entries mapping. Key and
// entry are decoded independently: a bad key fails with a LedgerKey error
// even when its paired entry is valid, and vice versa.
func DecodeSnapshot(entries map[string]string) (Snapshot, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	snapshot := make(Snapshot, 0, len(entries))
	for _, keyXdr := range keys {
		key, err := DecodeLedgerKey(keyXdr)
		if err != nil {
			return nil, err
		}
		entry, err := DecodeLedgerEntry(entries[keyXdr])
		if err != nil {
			return nil, err
		}
		snapshot = append(snapshot, SnapshotEntry{KeyXdr: keyXdr, Key: key, Entry: entry})
	}
	return snapshot, nil
}

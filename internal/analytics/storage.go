// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package analytics derives diagnostic reports from transaction meta, such
// as how much ledger storage a transaction grew or shrank.
package analytics

import (
	"fmt"

	"github.com/stellar/go/xdr"
)

// StorageGrowthReport summarizes ledger-entry size changes for one
// transaction, keyed by the entry key's base64 XDR encoding.
type StorageGrowthReport struct {
	BeforeBytes int64
	AfterBytes  int64
	DeltaBytes  int64
	PerKeyDelta map[string]int64
}

// ComputeStorageGrowth walks the ledger-entry changes recorded in a
// transaction's result meta and reports before/after entry sizes. State
// changes give the pre-transaction size; created, updated and restored
// entries give the post-transaction size; removed keys end at zero.
func ComputeStorageGrowth(meta xdr.TransactionMeta) (*StorageGrowthReport, error) {
	before := make(map[string]int64)
	after := make(map[string]int64)

	for _, change := range metaChanges(meta) {
		switch change.Type {
		case xdr.LedgerEntryChangeTypeLedgerEntryState:
			if err := recordEntry(before, change.State); err != nil {
				return nil, err
			}
		case xdr.LedgerEntryChangeTypeLedgerEntryCreated:
			if err := recordEntry(after, change.Created); err != nil {
				return nil, err
			}
		case xdr.LedgerEntryChangeTypeLedgerEntryUpdated:
			if err := recordEntry(after, change.Updated); err != nil {
				return nil, err
			}
		case xdr.LedgerEntryChangeTypeLedgerEntryRestored:
			if err := recordEntry(after, change.Restored); err != nil {
				return nil, err
			}
		case xdr.LedgerEntryChangeTypeLedgerEntryRemoved:
			key, err := xdr.MarshalBase64(*change.Removed)
			if err != nil {
				return nil, fmt.Errorf("failed to encode removed key: %w", err)
			}
			after[key] = 0
		}
	}

	report := &StorageGrowthReport{PerKeyDelta: make(map[string]int64)}
	for key, size := range before {
		report.BeforeBytes += size
		if _, changed := after[key]; !changed {
			after[key] = size
		}
	}
	for key, size := range after {
		report.AfterBytes += size
		if delta := size - before[key]; delta != 0 {
			report.PerKeyDelta[key] = delta
		}
	}
	report.DeltaBytes = report.AfterBytes - report.BeforeBytes
	return report, nil
}

// ResourceFee extracts the declared Soroban resource fee from an envelope's
// transaction, or zero for transactions without Soroban data.
func ResourceFee(envelope xdr.TransactionEnvelope) int64 {
	var ext xdr.TransactionExt
	switch envelope.Type {
	case xdr.EnvelopeTypeEnvelopeTypeTx:
		if envelope.V1 == nil {
			return 0
		}
		ext = envelope.V1.Tx.Ext
	case xdr.EnvelopeTypeEnvelopeTypeTxFeeBump:
		if envelope.FeeBump == nil || envelope.FeeBump.Tx.InnerTx.V1 == nil {
			return 0
		}
		ext = envelope.FeeBump.Tx.InnerTx.V1.Tx.Ext
	default:
		return 0
	}
	if ext.SorobanData == nil {
		return 0
	}
	return int64(ext.SorobanData.ResourceFee)
}

func recordEntry(sizes map[string]int64, entry *xdr.LedgerEntry) error {
	if entry == nil {
		return nil
	}
	key, err := entry.LedgerKey()
	if err != nil {
		return fmt.Errorf("failed to derive ledger key: %w", err)
	}
	encoded, err := xdr.MarshalBase64(key)
	if err != nil {
		return fmt.Errorf("failed to encode ledger key: %w", err)
	}
	raw, err := entry.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode ledger entry: %w", err)
	}
	sizes[encoded] = int64(len(raw))
	return nil
}

func metaChanges(meta xdr.TransactionMeta) []xdr.LedgerEntryChange {
	var changes []xdr.LedgerEntryChange
	appendOps := func(ops []xdr.OperationMeta) {
		for _, op := range ops {
			changes = append(changes, op.Changes...)
		}
	}

	switch meta.V {
	case 0:
		if meta.Operations != nil {
			appendOps(*meta.Operations)
		}
	case 1:
		if meta.V1 != nil {
			changes = append(changes, meta.V1.TxChanges...)
			appendOps(meta.V1.Operations)
		}
	case 2:
		if meta.V2 != nil {
			changes = append(changes, meta.V2.TxChangesBefore...)
			appendOps(meta.V2.Operations)
			changes = append(changes, meta.V2.TxChangesAfter...)
		}
	case 3:
		if meta.V3 != nil {
			changes = append(changes, meta.V3.TxChangesBefore...)
			appendOps(meta.V3.Operations)
			changes = append(changes, meta.V3.TxChangesAfter...)
		}
	case 4:
		if meta.V4 != nil {
			changes = append(changes, meta.V4.TxChangesBefore...)
			for _, op := range meta.V4.Operations {
				changes = append(changes, op.Changes...)
			}
			changes = append(changes, meta.V4.TxChangesAfter...)
		}
	}
	return changes
}

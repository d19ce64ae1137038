// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"fmt"

	"github.com/stellar/go/xdr"
)

// FootprintKeys returns the envelope's declared read and read-write ledger
// keys in their base64 XDR form, read-only first. Envelopes without Soroban
// transaction data have an empty footprint.
func FootprintKeys(envelope xdr.TransactionEnvelope) ([]string, error) {
	var ext xdr.TransactionExt
	switch envelope.Type {
	case xdr.EnvelopeTypeEnvelopeTypeTx:
		if envelope.V1 == nil {
			return nil, nil
		}
		ext = envelope.V1.Tx.Ext
	case xdr.EnvelopeTypeEnvelopeTypeTxFeeBump:
		if envelope.FeeBump == nil || envelope.FeeBump.Tx.InnerTx.V1 == nil {
			return nil, nil
		}
		ext = envelope.FeeBump.Tx.InnerTx.V1.Tx.Ext
	default:
		return nil, nil
	}
	if ext.SorobanData == nil {
		return nil, nil
	}

	footprint := ext.SorobanData.Resources.Footprint
	keys := make([]string, 0, len(footprint.ReadOnly)+len(footprint.ReadWrite))
	for _, key := range append(append([]xdr.LedgerKey{}, footprint.ReadOnly...), footprint.ReadWrite...) {
		encoded, err := xdr.MarshalBase64(key)
		if err != nil {
			return nil, fmt.Errorf("failed to encode footprint key: %w", err)
		}
		keys = append(keys, encoded)
	}
	return keys, nil
}

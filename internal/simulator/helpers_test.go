package simulator

import (
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/require"
)

func testContractAddress(seed byte) xdr.ScAddress {
	var cid xdr.ContractId
	for i := range cid {
		cid[i] = seed
	}
	return xdr.ScAddress{
		Type:       xdr.ScAddressTypeScAddressTypeContract,
		ContractId: &cid,
	}
}

func testSourceAccount() xdr.MuxedAccount {
	var ed25519 xdr.Uint256
	for i := range ed25519 {
		ed25519[i] = byte(i)
	}
	return xdr.MuxedAccount{
		Type:    xdr.CryptoKeyTypeKeyTypeEd25519,
		Ed25519: &ed25519,
	}
}

func invokeContractOp(addr xdr.ScAddress, fn string, args ...xdr.ScVal) xdr.Operation {
	return xdr.Operation{
		Body: xdr.OperationBody{
			Type: xdr.OperationTypeInvokeHostFunction,
			InvokeHostFunctionOp: &xdr.InvokeHostFunctionOp{
				HostFunction: xdr.HostFunction{
					Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
					InvokeContract: &xdr.InvokeContractArgs{
						ContractAddress: addr,
						FunctionName:    xdr.ScSymbol(fn),
						Args:            args,
					},
				},
				Auth: []xdr.SorobanAuthorizationEntry{},
			},
		},
	}
}

func uploadWasmOp() xdr.Operation {
	wasm := []byte{0x00, 0x61, 0x73, 0x6d}
	return xdr.Operation{
		Body: xdr.OperationBody{
			Type: xdr.OperationTypeInvokeHostFunction,
			InvokeHostFunctionOp: &xdr.InvokeHostFunctionOp{
				HostFunction: xdr.HostFunction{
					Type: xdr.HostFunctionTypeHostFunctionTypeUploadContractWasm,
					Wasm: &wasm,
				},
				Auth: []xdr.SorobanAuthorizationEntry{},
			},
		},
	}
}

func paymentOp() xdr.Operation {
	return xdr.Operation{
		Body: xdr.OperationBody{
			Type: xdr.OperationTypePayment,
			PaymentOp: &xdr.PaymentOp{
				Destination: testSourceAccount(),
				Asset:       xdr.Asset{Type: xdr.AssetTypeAssetTypeNative},
				Amount:      10,
			},
		},
	}
}

func v1Envelope(ops ...xdr.Operation) xdr.TransactionEnvelope {
	return xdr.TransactionEnvelope{
		Type: xdr.EnvelopeTypeEnvelopeTypeTx,
		V1: &xdr.TransactionV1Envelope{
			Tx: xdr.Transaction{
				SourceAccount: testSourceAccount(),
				Fee:           100,
				SeqNum:        1,
				Cond:          xdr.Preconditions{Type: xdr.PreconditionTypePrecondNone},
				Memo:          xdr.Memo{Type: xdr.MemoTypeMemoNone},
				Operations:    ops,
				Ext:           xdr.TransactionExt{V: 0},
			},
			Signatures: []xdr.DecoratedSignature{},
		},
	}
}

func v0Envelope(ops ...xdr.Operation) xdr.TransactionEnvelope {
	var source xdr.Uint256
	for i := range source {
		source[i] = byte(i)
	}
	return xdr.TransactionEnvelope{
		Type: xdr.EnvelopeTypeEnvelopeTypeTxV0,
		V0: &xdr.TransactionV0Envelope{
			Tx: xdr.TransactionV0{
				SourceAccountEd25519: source,
				Fee:                  100,
				SeqNum:               1,
				Memo:                 xdr.Memo{Type: xdr.MemoTypeMemoNone},
				Operations:           ops,
				Ext:                  xdr.TransactionV0Ext{V: 0},
			},
			Signatures: []xdr.DecoratedSignature{},
		},
	}
}

func feeBumpEnvelope(ops ...xdr.Operation) xdr.TransactionEnvelope {
	inner := v1Envelope(ops...)
	return xdr.TransactionEnvelope{
		Type: xdr.EnvelopeTypeEnvelopeTypeTxFeeBump,
		FeeBump: &xdr.FeeBumpTransactionEnvelope{
			Tx: xdr.FeeBumpTransaction{
				FeeSource: testSourceAccount(),
				Fee:       200,
				InnerTx: xdr.FeeBumpTransactionInnerTx{
					Type: xdr.EnvelopeTypeEnvelopeTypeTx,
					V1:   inner.V1,
				},
				Ext: xdr.FeeBumpTransactionExt{V: 0},
			},
			Signatures: []xdr.DecoratedSignature{},
		},
	}
}

func mustEncodeEnvelope(t *testing.T, envelope xdr.TransactionEnvelope) string {
	t.Helper()
	text, err := xdr.MarshalBase64(envelope)
	require.NoError(t, err)
	return text
}

// instancePair returns the instance ledger key and entry that make addr a
// resolvable stellar-asset contract in the sandbox host.
func instancePair(t *testing.T, addr xdr.ScAddress) (string, string) {
	t.Helper()

	key := xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.LedgerKeyContractData{
			Contract:   addr,
			Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
			Durability: xdr.ContractDataDurabilityPersistent,
		},
	}
	entry := xdr.LedgerEntry{
		LastModifiedLedgerSeq: 1,
		Data: xdr.LedgerEntryData{
			Type: xdr.LedgerEntryTypeContractData,
			ContractData: &xdr.ContractDataEntry{
				Contract:   addr,
				Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
				Durability: xdr.ContractDataDurabilityPersistent,
				Val: xdr.ScVal{
					Type: xdr.ScValTypeScvContractInstance,
					Instance: &xdr.ScContractInstance{
						Executable: xdr.ContractExecutable{
							Type: xdr.ContractExecutableTypeContractExecutableStellarAsset,
						},
					},
				},
			},
		},
	}

	keyText, err := xdr.MarshalBase64(key)
	require.NoError(t, err)
	entryText, err := xdr.MarshalBase64(entry)
	require.NoError(t, err)
	return keyText, entryText
}

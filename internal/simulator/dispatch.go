// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"fmt"

	"github.com/stellar/go/xdr"

	"github.com/dotandev/erst/internal/host"
)

// envelopeOperations unwraps the active envelope variant down to its
// operation list. A fee-bump envelope nests exactly one signed-current
// transaction; the format defines no other nesting.
func envelopeOperations(envelope xdr.TransactionEnvelope) ([]xdr.Operation, error) {
	switch envelope.Type {
	case xdr.EnvelopeTypeEnvelopeTypeTxV0:
		if envelope.V0 == nil {
			return nil, fmt.Errorf("envelope marked TxV0 carries no transaction")
		}
		return envelope.V0.Tx.Operations, nil
	case xdr.EnvelopeTypeEnvelopeTypeTx:
		if envelope.V1 == nil {
			return nil, fmt.Errorf("envelope marked Tx carries no transaction")
		}
		return envelope.V1.Tx.Operations, nil
	case xdr.EnvelopeTypeEnvelopeTypeTxFeeBump:
		if envelope.FeeBump == nil || envelope.FeeBump.Tx.InnerTx.V1 == nil {
			return nil, fmt.Errorf("fee-bump envelope carries no inner transaction")
		}
		return envelope.FeeBump.Tx.InnerTx.V1.Tx.Operations, nil
	default:
		return nil, fmt.Errorf("unsupported envelope type %s", envelope.Type)
	}
}

// dispatch walks the envelope's operations in order and drives the host for
// each invoke-contract host function, collecting one log line per operation.
// The first host failure stops dispatch; the logs gathered so far are still
// returned alongside the error.
func dispatch(ctx context.Context, h host.Host, envelope xdr.TransactionEnvelope) ([]string, error) {
	operations, err := envelopeOperations(envelope)
	if err != nil {
		return nil, err
	}

	var logs []string
	for _, op := range operations {
		if op.Body.Type != xdr.OperationTypeInvokeHostFunction {
			logs = append(logs, fmt.Sprintf("Skipping non-InvokeHostFunction Operation: %s", op.Body.Type))
			continue
		}

		hostFnOp := op.Body.MustInvokeHostFunctionOp()
		if hostFnOp.HostFunction.Type != xdr.HostFunctionTypeHostFunctionTypeInvokeContract {
			logs = append(logs, "Skipping non-InvokeContract Host Function")
			continue
		}

		args := hostFnOp.HostFunction.MustInvokeContract()
		logs = append(logs, fmt.Sprintf("Invoking Contract: %s", host.AddressString(args.ContractAddress)))

		_, err := h.InvokeContract(ctx, host.Call{
			ContractAddress: args.ContractAddress,
			FunctionName:    string(args.FunctionName),
			Args:            args.Args,
		})
		if err != nil {
			return logs, err
		}
	}
	return logs, nil
}

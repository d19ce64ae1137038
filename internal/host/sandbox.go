// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellar/go/xdr"
)

// Network-level per-transaction resource limits, matching the Soroban
// mainnet settings the simulator assumes.
const (
	defaultCPULimit    = 100_000_000
	defaultMemoryLimit = 40 * 1024 * 1024

	invokeBaseCPUCost  = 1_000_000
	invokePerArgCost   = 10_000
	entryReadCPUCost   = 50_000
	entryReadMemFactor = 2
)

// Budget tracks the compute and memory spent by a run against fixed limits.
type Budget struct {
	CPUInstructions uint64
	MemoryBytes     uint64
	CPULimit        uint64
	MemoryLimit     uint64
}

func (b *Budget) charge(cpu, mem uint64) error {
	b.CPUInstructions += cpu
	b.MemoryBytes += mem
	if b.CPUInstructions > b.CPULimit {
		return budgetFault(fmt.Sprintf("cpu instructions %d exceed limit %d", b.CPUInstructions, b.CPULimit))
	}
	if b.MemoryBytes > b.MemoryLimit {
		return budgetFault(fmt.Sprintf("memory bytes %d exceed limit %d", b.MemoryBytes, b.MemoryLimit))
	}
	return nil
}

// Sandbox is the in-process Host implementation used for simulation runs. It
// resolves contract instances and code through its storage view and meters a
// budget the way the real host's storage layer would, but it does not execute
// wasm bytecode: the VM proper stays an external collaborator, and every
// resolved invocation is recorded as a diagnostic event and returns void.
type Sandbox struct {
	entries map[string]xdr.LedgerEntry
	events  []Event
	diag    DiagnosticLevel
	budget  Budget
}

// NewSandbox returns an empty sandbox with default network limits.
func NewSandbox() *Sandbox {
	return &Sandbox{
		entries: make(map[string]xdr.LedgerEntry),
		budget: Budget{
			CPULimit:    defaultCPULimit,
			MemoryLimit: defaultMemoryLimit,
		},
	}
}

func (s *Sandbox) SetDiagnosticLevel(level DiagnosticLevel) {
	s.diag = level
}

// Budget exposes the resources consumed so far.
func (s *Sandbox) Budget() Budget {
	return s.budget
}

func (s *Sandbox) PutLedgerEntry(key xdr.LedgerKey, entry xdr.LedgerEntry) error {
	encoded, err := xdr.MarshalBase64(key)
	if err != nil {
		return fmt.Errorf("failed to encode ledger key: %w", err)
	}
	s.entries[encoded] = entry
	return nil
}

func (s *Sandbox) GetLedgerEntry(key xdr.LedgerKey) (xdr.LedgerEntry, bool, error) {
	encoded, err := xdr.MarshalBase64(key)
	if err != nil {
		return xdr.LedgerEntry{}, false, fmt.Errorf("failed to encode ledger key: %w", err)
	}
	entry, ok := s.entries[encoded]
	return entry, ok, nil
}

func (s *Sandbox) InvokeContract(ctx context.Context, call Call) (*InvokeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Fault{Kind: FaultKindContext, Code: "InvalidAction", Detail: err.Error()}
	}

	cpu := uint64(invokeBaseCPUCost + invokePerArgCost*len(call.Args))
	if err := s.budget.charge(cpu, 0); err != nil {
		return nil, err
	}

	instance, err := s.resolveInstance(call.ContractAddress)
	if err != nil {
		return nil, err
	}
	if err := s.resolveCode(call.ContractAddress, instance); err != nil {
		return nil, err
	}

	if s.diag >= DiagnosticLevelDebug {
		s.recordCall(call)
	}
	return &InvokeResult{Value: xdr.ScVal{Type: xdr.ScValTypeScvVoid}}, nil
}

func (s *Sandbox) Events() ([]Event, error) {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

// resolveInstance reads the contract's instance entry from storage.
func (s *Sandbox) resolveInstance(addr xdr.ScAddress) (*xdr.ScContractInstance, error) {
	key := xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.LedgerKeyContractData{
			Contract:   addr,
			Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
			Durability: xdr.ContractDataDurabilityPersistent,
		},
	}

	entry, ok, err := s.GetLedgerEntry(key)
	if err != nil {
		return nil, &Fault{Kind: FaultKindStorage, Code: "InternalError", Detail: err.Error()}
	}
	if !ok {
		return nil, missingEntryFault(fmt.Sprintf("contract instance not found for %s", AddressString(addr)))
	}
	if err := s.budget.charge(entryReadCPUCost, entrySize(entry)*entryReadMemFactor); err != nil {
		return nil, err
	}

	data := entry.Data.ContractData
	if data == nil || data.Val.Instance == nil {
		return nil, missingEntryFault(fmt.Sprintf("entry for %s is not a contract instance", AddressString(addr)))
	}
	return data.Val.Instance, nil
}

// resolveCode reads the wasm module referenced by a wasm-backed instance.
// Stellar-asset instances carry no code entry and resolve trivially.
func (s *Sandbox) resolveCode(addr xdr.ScAddress, instance *xdr.ScContractInstance) error {
	if instance.Executable.Type != xdr.ContractExecutableTypeContractExecutableWasm {
		return nil
	}
	wasmHash := instance.Executable.WasmHash
	if wasmHash == nil {
		return missingEntryFault(fmt.Sprintf("instance for %s has no wasm hash", AddressString(addr)))
	}

	key := xdr.LedgerKey{
		Type:         xdr.LedgerEntryTypeContractCode,
		ContractCode: &xdr.LedgerKeyContractCode{Hash: *wasmHash},
	}
	entry, ok, err := s.GetLedgerEntry(key)
	if err != nil {
		return &Fault{Kind: FaultKindStorage, Code: "InternalError", Detail: err.Error()}
	}
	if !ok {
		return missingEntryFault(fmt.Sprintf("contract code not found for hash %x", *wasmHash))
	}
	return s.budget.charge(entryReadCPUCost, entrySize(entry)*entryReadMemFactor)
}

func (s *Sandbox) recordCall(call Call) {
	topics := []string{"fn_call", call.FunctionName}
	data := make([]string, 0, len(call.Args))
	for _, arg := range call.Args {
		data = append(data, arg.String())
	}
	s.events = append(s.events, Event{
		Type:     "diagnostic",
		Contract: AddressString(call.ContractAddress),
		Topics:   topics,
		Data:     fmt.Sprintf("[%s]", strings.Join(data, ", ")),
	})
}

func entrySize(entry xdr.LedgerEntry) uint64 {
	raw, err := entry.MarshalBinary()
	if err != nil {
		return 0
	}
	return uint64(len(raw))
}

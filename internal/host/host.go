// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package host defines the narrow contract the simulator has with a Soroban
// execution host: storage population, contract invocation, event retrieval
// and a diagnostic verbosity switch. The simulator only ever talks to the
// Host interface so the in-process sandbox can be swapped for a real VM.
package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// DiagnosticLevel controls how much debug detail the host records.
type DiagnosticLevel int

const (
	DiagnosticLevelNone DiagnosticLevel = iota
	DiagnosticLevelDebug
)

// Call identifies one contract invocation.
type Call struct {
	ContractAddress xdr.ScAddress
	FunctionName    string
	Args            []xdr.ScVal
}

// InvokeResult is the success side of an invocation.
type InvokeResult struct {
	Value xdr.ScVal
}

// Event is one diagnostic event accumulated by the host during a run.
type Event struct {
	Type     string
	Contract string
	Topics   []string
	Data     string
}

func (e Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", e.Type)
	if e.Contract != "" {
		fmt.Fprintf(&b, " contract=%s", e.Contract)
	}
	if len(e.Topics) > 0 {
		fmt.Fprintf(&b, " topics=[%s]", strings.Join(e.Topics, ", "))
	}
	if e.Data != "" {
		fmt.Fprintf(&b, " data=%s", e.Data)
	}
	return b.String()
}

// Host is the execution environment a simulation run drives. One Host value
// is created per run and discarded afterwards; implementations need not be
// safe for concurrent use.
type Host interface {
	// SetDiagnosticLevel switches diagnostic event recording on or off.
	SetDiagnosticLevel(level DiagnosticLevel)

	// PutLedgerEntry makes an entry visible to subsequent host reads,
	// keyed by the entry key's canonical XDR encoding.
	PutLedgerEntry(key xdr.LedgerKey, entry xdr.LedgerEntry) error

	// GetLedgerEntry reads back an entry; the second return is false when
	// the key is absent from the storage view.
	GetLedgerEntry(key xdr.LedgerKey) (xdr.LedgerEntry, bool, error)

	// InvokeContract runs one contract call. A non-nil error is always a
	// *Fault or an error wrapping one.
	InvokeContract(ctx context.Context, call Call) (*InvokeResult, error)

	// Events returns the diagnostic events accumulated so far, in order.
	Events() ([]Event, error)
}

// AddressString renders an ScAddress as its strkey form, matching how the
// Soroban tooling displays addresses (G... for accounts, C... for contracts).
func AddressString(addr xdr.ScAddress) string {
	switch addr.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		if addr.AccountId != nil {
			return addr.AccountId.Address()
		}
	case xdr.ScAddressTypeScAddressTypeContract:
		if addr.ContractId != nil {
			if s, err := strkey.Encode(strkey.VersionByteContract, addr.ContractId[:]); err == nil {
				return s
			}
		}
	}
	return addr.Type.String()
}

// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package host

import "fmt"

// Fault kinds, mirroring the host error codes the Soroban environment uses.
const (
	FaultKindStorage = "Storage"
	FaultKindBudget  = "Budget"
	FaultKindContext = "Context"
	FaultKindWasmVm  = "WasmVm"
)

// Fault is a structured failure raised by the host. Its rendered form keeps
// the "HostError: Error(Kind, Code)" shape the Soroban environment prints,
// which downstream fault classification keys on.
type Fault struct {
	Kind   string
	Code   string
	Detail string
}

func (f *Fault) Error() string {
	if f.Detail == "" {
		return fmt.Sprintf("HostError: Error(%s, %s)", f.Kind, f.Code)
	}
	return fmt.Sprintf("HostError: Error(%s, %s): %s", f.Kind, f.Code, f.Detail)
}

// Description returns the rendered fault text used for classification.
func (f *Fault) Description() string {
	return f.Error()
}

func missingEntryFault(detail string) *Fault {
	return &Fault{Kind: FaultKindStorage, Code: "MissingValue", Detail: detail}
}

func budgetFault(detail string) *Fault {
	return &Fault{Kind: FaultKindBudget, Code: "ExceededLimit", Detail: detail}
}

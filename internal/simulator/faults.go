// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"errors"
	"strings"
)

// FaultCategory is the fixed set of buckets an execution failure decodes into.
type FaultCategory string

const (
	UnreachableTrap            FaultCategory = "unreachable_trap"
	OutOfBoundsTrap            FaultCategory = "out_of_bounds_trap"
	IntegerOverflowTrap        FaultCategory = "integer_overflow_trap"
	StackOverflowTrap          FaultCategory = "stack_overflow_trap"
	DivideByZeroTrap           FaultCategory = "divide_by_zero_trap"
	GenericWasmTrap            FaultCategory = "generic_wasm_trap"
	HostInitiatedFault         FaultCategory = "host_initiated_fault"
	UnclassifiedExecutionError FaultCategory = "unclassified_execution_error"
)

// FaultSource lets a failure expose its own rendered description instead of
// relying on Error(). A future host that reports structured fault codes plugs
// in here without changing classification behavior for text-only sources.
type FaultSource interface {
	Description() string
}

// trapPatterns are checked in order against the lowercased description once a
// wasm trap is identified.
var trapPatterns = []struct {
	substring string
	category  FaultCategory
	message   string
}{
	{"unreachable", UnreachableTrap, "Unreachable Instruction: The contract hit a panic or unreachable code path."},
	{"out of bounds", OutOfBoundsTrap, "Out of Bounds Access: The contract tried to access invalid memory (OOB)."},
	{"integer overflow", IntegerOverflowTrap, "Integer Overflow: A mathematical operation exceeded the type limits."},
	{"stack overflow", StackOverflowTrap, "Stack Overflow: The contract's recursion or stack usage is too high."},
	{"divide by zero", DivideByZeroTrap, "Division by Zero: The contract attempted to divide by zero."},
}

// Classify decodes an execution failure into a category and a human-readable
// message. It only inspects the failure's rendered text and never changes
// control flow; the categories exist for the caller's benefit.
func Classify(failure error) (FaultCategory, string) {
	description := describe(failure)
	lower := strings.ToLower(description)

	if strings.Contains(lower, "wasm trap") {
		for _, p := range trapPatterns {
			if strings.Contains(lower, p.substring) {
				return p.category, p.message
			}
		}
		return GenericWasmTrap, "Wasm Trap: " + description
	}

	if strings.Contains(description, "HostError") {
		return HostInitiatedFault, "Host-initiated Trap: " + description
	}

	return UnclassifiedExecutionError, "Execution Error: " + description
}

func describe(failure error) string {
	var source FaultSource
	if errors.As(failure, &source) {
		return source.Description()
	}
	return failure.Error()
}

// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import "fmt"

// RequestShapeError means the top-level request was not a well-formed
// SimulationRequest; it is raised before any decode work happens.
type RequestShapeError struct {
	Err error
}

func (e *RequestShapeError) Error() string {
	return fmt.Sprintf("Invalid JSON: %v", e.Err)
}

func (e *RequestShapeError) Unwrap() error { return e.Err }

// Base64Error means a sub-field's transport encoding was invalid. Field names
// the offending input ("Envelope", "LedgerKey", "LedgerEntry", "ResultMeta").
type Base64Error struct {
	Field string
	Err   error
}

func (e *Base64Error) Error() string {
	return fmt.Sprintf("Failed to decode %s Base64: %v", e.Field, e.Err)
}

func (e *Base64Error) Unwrap() error { return e.Err }

// XdrFormatError means the bytes were valid base64 but not a valid encoding
// of the expected XDR type.
type XdrFormatError struct {
	Field string
	Err   error
}

func (e *XdrFormatError) Error() string {
	return fmt.Sprintf("Failed to parse %s XDR: %v", e.Field, e.Err)
}

func (e *XdrFormatError) Unwrap() error { return e.Err }

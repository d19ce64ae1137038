// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package simulator runs one Soroban transaction simulation end to end:
// decode the request's XDR, populate a fresh execution host, dispatch the
// envelope's contract invocations and assemble a structured response.
package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dotandev/erst/internal/host"
	"github.com/dotandev/erst/internal/logger"
	"github.com/dotandev/erst/internal/telemetry"
)

// Simulator runs simulation requests. Each run gets a fresh Host from the
// factory; nothing is shared or pooled between runs.
type Simulator struct {
	newHost func() host.Host
}

// New returns a Simulator backed by the in-process sandbox host.
func New() *Simulator {
	return &Simulator{newHost: func() host.Host { return host.NewSandbox() }}
}

// NewWithHost returns a Simulator that draws per-run hosts from factory.
func NewWithHost(factory func() host.Host) *Simulator {
	return &Simulator{newHost: factory}
}

// RunRaw parses a raw JSON request and runs it. A malformed request fails
// fast before any XDR decode work.
func (s *Simulator) RunRaw(ctx context.Context, raw []byte) *SimulationResponse {
	var request SimulationRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		return errorResponse(&RequestShapeError{Err: err})
	}
	return s.Run(ctx, &request)
}

// Run executes one simulation start to finish. The response is always
// well-formed: decode errors short-circuit with no host ever constructed,
// and a host fault during dispatch still yields the logs gathered so far
// plus a classified error message.
func (s *Simulator) Run(ctx context.Context, request *SimulationRequest) *SimulationResponse {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "simulate_run")
	defer span.End()

	if request == nil || request.EnvelopeXdr == "" {
		return errorResponse(&RequestShapeError{Err: errors.New("envelope_xdr is required")})
	}

	envelope, err := DecodeEnvelope(request.EnvelopeXdr)
	if err != nil {
		span.RecordError(err)
		return errorResponse(err)
	}

	// Result meta is replay context only; it never influences the outcome,
	// but a provided blob still has to decode.
	if request.ResultMetaXdr != "" {
		if _, err := DecodeResultMeta(request.ResultMetaXdr); err != nil {
			span.RecordError(err)
			return errorResponse(err)
		}
	}

	snapshot, err := DecodeSnapshot(request.LedgerEntries)
	if err != nil {
		span.RecordError(err)
		return errorResponse(err)
	}

	h := s.newHost()
	h.SetDiagnosticLevel(host.DiagnosticLevelDebug)

	loaded, err := populateStorage(h, snapshot)
	if err != nil {
		span.RecordError(err)
		return errorResponse(err)
	}
	span.SetAttributes(attribute.Int("ledger_entries.loaded", loaded))

	logs := []string{fmt.Sprintf("Host Initialized. Loaded %d Ledger Entries", loaded)}

	invocationLogs, dispatchErr := dispatch(ctx, h, envelope)
	logs = append(logs, invocationLogs...)

	if dispatchErr != nil {
		category, message := Classify(dispatchErr)
		span.SetAttributes(attribute.String("fault.category", string(category)))
		logger.Logger.Debug("Simulation failed", "category", string(category), "error", dispatchErr)
		return &SimulationResponse{
			Status: "error",
			Error:  message,
			Events: []string{},
			Logs:   logs,
		}
	}

	events := []string{}
	hostEvents, err := h.Events()
	if err != nil {
		events = []string{fmt.Sprintf("Failed to retrieve events: %v", err)}
	} else {
		for _, event := range hostEvents {
			events = append(events, event.String())
		}
	}
	span.SetAttributes(attribute.Int("events.count", len(events)))

	return &SimulationResponse{
		Status: "success",
		Events: events,
		Logs:   logs,
	}
}

func errorResponse(err error) *SimulationResponse {
	return &SimulationResponse{
		Status: "error",
		Error:  err.Error(),
		Events: []string{},
		Logs:   []string{},
	}
}

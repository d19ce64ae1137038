package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/erst/internal/host"
)

func TestRunZeroOperations(t *testing.T) {
	request := &SimulationRequest{EnvelopeXdr: mustEncodeEnvelope(t, v1Envelope())}

	response := New().Run(context.Background(), request)

	assert.Equal(t, "success", response.Status)
	assert.Empty(t, response.Error)
	assert.Empty(t, response.Events)
	require.Equal(t, []string{"Host Initialized. Loaded 0 Ledger Entries"}, response.Logs)
}

func TestRunInvokeAndSkipPreservesOrder(t *testing.T) {
	addr := testContractAddress(3)
	keyText, entryText := instancePair(t, addr)

	request := &SimulationRequest{
		EnvelopeXdr:   mustEncodeEnvelope(t, v1Envelope(invokeContractOp(addr, "transfer"), paymentOp())),
		LedgerEntries: map[string]string{keyText: entryText},
	}

	response := New().Run(context.Background(), request)

	require.Equal(t, "success", response.Status)
	require.Len(t, response.Logs, 3)
	assert.Equal(t, "Host Initialized. Loaded 1 Ledger Entries", response.Logs[0])
	assert.True(t, strings.HasPrefix(response.Logs[1], "Invoking Contract: C"), response.Logs[1])
	assert.True(t, strings.HasPrefix(response.Logs[2], "Skipping non-InvokeHostFunction Operation"), response.Logs[2])
}

func TestRunSkipThenInvokeMatchesInputOrder(t *testing.T) {
	addr := testContractAddress(3)
	keyText, entryText := instancePair(t, addr)

	request := &SimulationRequest{
		EnvelopeXdr:   mustEncodeEnvelope(t, v1Envelope(paymentOp(), invokeContractOp(addr, "transfer"))),
		LedgerEntries: map[string]string{keyText: entryText},
	}

	response := New().Run(context.Background(), request)

	require.Equal(t, "success", response.Status)
	require.Len(t, response.Logs, 3)
	assert.Contains(t, response.Logs[1], "Skipping")
	assert.Contains(t, response.Logs[2], "Invoking Contract")
}

func TestRunSkipsNonInvokeHostFunction(t *testing.T) {
	request := &SimulationRequest{EnvelopeXdr: mustEncodeEnvelope(t, v1Envelope(uploadWasmOp()))}

	response := New().Run(context.Background(), request)

	require.Equal(t, "success", response.Status)
	require.Len(t, response.Logs, 2)
	assert.Equal(t, "Skipping non-InvokeContract Host Function", response.Logs[1])
}

func TestRunFeeBumpUnwrapsInnerOperations(t *testing.T) {
	addr := testContractAddress(9)
	keyText, entryText := instancePair(t, addr)

	request := &SimulationRequest{
		EnvelopeXdr:   mustEncodeEnvelope(t, feeBumpEnvelope(invokeContractOp(addr, "hello"))),
		LedgerEntries: map[string]string{keyText: entryText},
	}

	response := New().Run(context.Background(), request)

	require.Equal(t, "success", response.Status)
	require.Len(t, response.Logs, 2)
	assert.Contains(t, response.Logs[1], "Invoking Contract")
	require.Len(t, response.Events, 1)
	assert.Contains(t, response.Events[0], "fn_call")
	assert.Contains(t, response.Events[0], "hello")
}

func TestRunMissingContractInstanceFails(t *testing.T) {
	request := &SimulationRequest{
		EnvelopeXdr: mustEncodeEnvelope(t, v1Envelope(invokeContractOp(testContractAddress(4), "hello"))),
	}

	response := New().Run(context.Background(), request)

	assert.Equal(t, "error", response.Status)
	assert.True(t, strings.HasPrefix(response.Error, "Host-initiated Trap: "), response.Error)
	assert.Empty(t, response.Events)
	// Logs collected before the fault survive in the response.
	require.Len(t, response.Logs, 2)
	assert.Contains(t, response.Logs[1], "Invoking Contract")
}

func TestRunFaultStopsFurtherDispatch(t *testing.T) {
	missing := testContractAddress(4)
	present := testContractAddress(5)
	keyText, entryText := instancePair(t, present)

	request := &SimulationRequest{
		EnvelopeXdr: mustEncodeEnvelope(t, v1Envelope(
			invokeContractOp(missing, "first"),
			invokeContractOp(present, "second"),
		)),
		LedgerEntries: map[string]string{keyText: entryText},
	}

	response := New().Run(context.Background(), request)

	assert.Equal(t, "error", response.Status)
	// Only the first invocation is logged; dispatch stopped there.
	require.Len(t, response.Logs, 2)
}

func TestRunLoadedEntryCount(t *testing.T) {
	first, firstEntry := instancePair(t, testContractAddress(1))
	second, secondEntry := instancePair(t, testContractAddress(2))

	request := &SimulationRequest{
		EnvelopeXdr:   mustEncodeEnvelope(t, v1Envelope()),
		LedgerEntries: map[string]string{first: firstEntry, second: secondEntry},
	}

	response := New().Run(context.Background(), request)

	require.Equal(t, "success", response.Status)
	assert.Equal(t, "Host Initialized. Loaded 2 Ledger Entries", response.Logs[0])
}

func TestRunIsIdempotent(t *testing.T) {
	addr := testContractAddress(6)
	keyText, entryText := instancePair(t, addr)

	request := &SimulationRequest{
		EnvelopeXdr:   mustEncodeEnvelope(t, v1Envelope(invokeContractOp(addr, "tick"), paymentOp())),
		LedgerEntries: map[string]string{keyText: entryText},
	}

	first := New().Run(context.Background(), request)
	second := New().Run(context.Background(), request)
	assert.Equal(t, first, second)
}

func TestRunDecodeErrorsShortCircuit(t *testing.T) {
	t.Run("bad envelope base64", func(t *testing.T) {
		response := New().Run(context.Background(), &SimulationRequest{EnvelopeXdr: "!!!"})
		assert.Equal(t, "error", response.Status)
		assert.Contains(t, response.Error, "Base64")
		assert.Empty(t, response.Logs)
		assert.Empty(t, response.Events)
	})

	t.Run("bad result meta", func(t *testing.T) {
		response := New().Run(context.Background(), &SimulationRequest{
			EnvelopeXdr:   mustEncodeEnvelope(t, v1Envelope()),
			ResultMetaXdr: "AAAA",
		})
		assert.Equal(t, "error", response.Status)
		assert.Contains(t, response.Error, "ResultMeta XDR")
		assert.Empty(t, response.Logs)
	})

	t.Run("bad snapshot key", func(t *testing.T) {
		response := New().Run(context.Background(), &SimulationRequest{
			EnvelopeXdr:   mustEncodeEnvelope(t, v1Envelope()),
			LedgerEntries: map[string]string{"???": "AAAA"},
		})
		assert.Equal(t, "error", response.Status)
		assert.Contains(t, response.Error, "LedgerKey Base64")
		assert.Empty(t, response.Logs)
	})
}

func TestResponseAlwaysCarriesEventsAndLogs(t *testing.T) {
	t.Run("success with zero events", func(t *testing.T) {
		response := New().Run(context.Background(), &SimulationRequest{
			EnvelopeXdr: mustEncodeEnvelope(t, v1Envelope()),
		})
		require.Equal(t, "success", response.Status)

		raw, err := json.Marshal(response)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"events":[]`)
		assert.Contains(t, string(raw), `"logs":["Host Initialized. Loaded 0 Ledger Entries"]`)
	})

	t.Run("decode error", func(t *testing.T) {
		response := New().Run(context.Background(), &SimulationRequest{EnvelopeXdr: "!!!"})
		require.Equal(t, "error", response.Status)

		raw, err := json.Marshal(response)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"events":[]`)
		assert.Contains(t, string(raw), `"logs":[]`)
	})

	t.Run("host fault", func(t *testing.T) {
		response := New().Run(context.Background(), &SimulationRequest{
			EnvelopeXdr: mustEncodeEnvelope(t, v1Envelope(invokeContractOp(testContractAddress(1), "hello"))),
		})
		require.Equal(t, "error", response.Status)

		raw, err := json.Marshal(response)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"events":[]`)
	})
}

// eventlessHost is a Sandbox whose event buffer cannot be read back.
type eventlessHost struct {
	*host.Sandbox
}

func (h *eventlessHost) Events() ([]host.Event, error) {
	return nil, errors.New("event buffer corrupted")
}

func TestRunEventRetrievalFailure(t *testing.T) {
	sim := NewWithHost(func() host.Host {
		return &eventlessHost{Sandbox: host.NewSandbox()}
	})

	response := sim.Run(context.Background(), &SimulationRequest{
		EnvelopeXdr: mustEncodeEnvelope(t, v1Envelope()),
	})

	// A failed retrieval does not abort the run; it becomes the single
	// events entry.
	assert.Equal(t, "success", response.Status)
	assert.Equal(t, []string{"Failed to retrieve events: event buffer corrupted"}, response.Events)
	require.Equal(t, []string{"Host Initialized. Loaded 0 Ledger Entries"}, response.Logs)
}

func TestRunRaw(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		response := New().RunRaw(context.Background(), []byte("{nope"))
		assert.Equal(t, "error", response.Status)
		assert.Contains(t, response.Error, "Invalid JSON")
	})

	t.Run("wrong-shaped field", func(t *testing.T) {
		response := New().RunRaw(context.Background(), []byte(`{"envelope_xdr": 42}`))
		assert.Equal(t, "error", response.Status)
		assert.Contains(t, response.Error, "Invalid JSON")
	})

	t.Run("missing envelope", func(t *testing.T) {
		response := New().RunRaw(context.Background(), []byte(`{}`))
		assert.Equal(t, "error", response.Status)
		assert.Contains(t, response.Error, "envelope_xdr is required")
	})

	t.Run("valid request", func(t *testing.T) {
		raw := []byte(`{"envelope_xdr": "` + mustEncodeEnvelope(t, v1Envelope()) + `"}`)
		response := New().RunRaw(context.Background(), raw)
		assert.Equal(t, "success", response.Status)
	})
}

package simulator

// SimulationRequest is the JSON object consumed per run, typically via Stdin
type SimulationRequest struct {
	// XDR encoded TransactionEnvelope
	EnvelopeXdr string `json:"envelope_xdr"`
	// XDR encoded TransactionMeta (historical data, replay context only)
	ResultMetaXdr string `json:"result_meta_xdr,omitempty"`
	// Ledger state the run executes against: key XDR -> entry XDR
	LedgerEntries map[string]string `json:"ledger_entries,omitempty"`
}

// SimulationResponse is the JSON object produced per run, typically via Stdout.
// Events and Logs are always emitted, possibly empty, so consumers can index
// them without probing for presence.
type SimulationResponse struct {
	Status string   `json:"status"` // "success" or "error"
	Error  string   `json:"error,omitempty"`
	Events []string `json:"events"` // Diagnostic events
	Logs   []string `json:"logs"`   // Host debug logs
}

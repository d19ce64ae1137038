// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	goversion "github.com/hashicorp/go-version"
	"github.com/stellar/go/clients/horizonclient"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dotandev/erst/internal/logger"
	"github.com/dotandev/erst/internal/telemetry"
)

// Network types for Stellar
type Network string

const (
	Testnet   Network = "testnet"
	Mainnet   Network = "mainnet"
	Futurenet Network = "futurenet"
)

// Horizon URLs for each network
const (
	TestnetHorizonURL   = "https://horizon-testnet.stellar.org/"
	MainnetHorizonURL   = "https://horizon.stellar.org/"
	FuturenetHorizonURL = "https://horizon-futurenet.stellar.org/"
)

// Soroban RPC URLs
const (
	TestnetSorobanURL   = "https://soroban-testnet.stellar.org"
	MainnetSorobanURL   = "https://mainnet.stellar.validationcloud.io/v1/soroban-rpc-demo" // Public demo endpoint
	FuturenetSorobanURL = "https://rpc-futurenet.stellar.org"
)

// MinHorizonVersion is the oldest Horizon release whose transaction payloads
// carry the XDR fields the simulator needs.
const MinHorizonVersion = "2.0.0"

// Client handles interactions with the Stellar Network
type Client struct {
	HorizonURL string
	Horizon    horizonclient.ClientInterface
	Network    Network
	SorobanURL string
	AltURLs    []string
	HTTP       *http.Client
	mu         sync.RWMutex
	currIndex  int
}

// TransactionResponse contains the raw XDR fields needed for simulation
type TransactionResponse struct {
	EnvelopeXdr   string
	ResultXdr     string
	ResultMetaXdr string
}

// NewClient creates a new RPC client with the specified network
// If network is empty, defaults to Mainnet
func NewClient(net Network) *Client {
	if net == "" {
		net = Mainnet
	}

	var horizonURL string
	switch net {
	case Testnet:
		horizonURL = TestnetHorizonURL
	case Futurenet:
		horizonURL = FuturenetHorizonURL
	case Mainnet:
		fallthrough
	default:
		horizonURL = MainnetHorizonURL
	}

	return NewClientWithURLs([]string{horizonURL}, net)
}

// NewClientWithURL creates a new RPC client with a custom Horizon URL
func NewClientWithURL(url string, net Network) *Client {
	return NewClientWithURLs([]string{url}, net)
}

// NewClientWithURLs creates a new RPC client with a list of Horizon URLs for failover
func NewClientWithURLs(urls []string, net Network) *Client {
	if len(urls) == 0 {
		return NewClient(net)
	}

	var sorobanURL string
	switch net {
	case Testnet:
		sorobanURL = TestnetSorobanURL
	case Futurenet:
		sorobanURL = FuturenetSorobanURL
	default:
		sorobanURL = MainnetSorobanURL
	}

	return &Client{
		HorizonURL: urls[0],
		Horizon: &horizonclient.Client{
			HorizonURL: urls[0],
			HTTP:       http.DefaultClient,
		},
		Network:    net,
		SorobanURL: sorobanURL,
		AltURLs:    urls,
		HTTP:       http.DefaultClient,
	}
}

// currentHorizon returns the active Horizon client and URL under the same
// lock rotateURL takes to swap them.
func (c *Client) currentHorizon() (horizonclient.ClientInterface, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Horizon, c.HorizonURL
}

// rotateURL switches to the next available provider URL
func (c *Client) rotateURL() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.AltURLs) <= 1 {
		return false
	}

	c.currIndex = (c.currIndex + 1) % len(c.AltURLs)
	c.HorizonURL = c.AltURLs[c.currIndex]
	c.Horizon = &horizonclient.Client{
		HorizonURL: c.HorizonURL,
		HTTP:       http.DefaultClient,
	}

	logger.Logger.Warn("RPC failover triggered", "new_url", c.HorizonURL)
	return true
}

// GetTransaction fetches the transaction details and full XDR data with automatic failover
func (c *Client) GetTransaction(ctx context.Context, hash string) (*TransactionResponse, error) {
	for attempt := 0; attempt < len(c.AltURLs); attempt++ {
		resp, err := c.getTransactionAttempt(ctx, hash)
		if err == nil {
			return resp, nil
		}

		if attempt < len(c.AltURLs)-1 {
			logger.Logger.Warn("Retrying with fallback RPC...", "error", err)
			if !c.rotateURL() {
				break
			}
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("all RPC endpoints failed")
}

func (c *Client) getTransactionAttempt(ctx context.Context, hash string) (*TransactionResponse, error) {
	horizon, horizonURL := c.currentHorizon()

	tracer := telemetry.GetTracer()
	_, span := tracer.Start(ctx, "rpc_get_transaction")
	span.SetAttributes(
		attribute.String("transaction.hash", hash),
		attribute.String("network", string(c.Network)),
		attribute.String("rpc.url", horizonURL),
	)
	defer span.End()

	logger.Logger.Debug("Fetching transaction details", "hash", hash, "url", horizonURL)

	tx, err := horizon.TransactionDetail(hash)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch transaction from %s: %w", horizonURL, err)
	}

	span.SetAttributes(
		attribute.Int("envelope.size_bytes", len(tx.EnvelopeXdr)),
		attribute.Int("result.size_bytes", len(tx.ResultXdr)),
		attribute.Int("result_meta.size_bytes", len(tx.ResultMetaXdr)),
	)

	logger.Logger.Info("Transaction fetched successfully", "hash", hash, "envelope_size", len(tx.EnvelopeXdr), "url", horizonURL)

	return &TransactionResponse{
		EnvelopeXdr:   tx.EnvelopeXdr,
		ResultXdr:     tx.ResultXdr,
		ResultMetaXdr: tx.ResultMetaXdr,
	}, nil
}

// CheckHorizonVersion verifies the connected Horizon serves a supported
// release. A pre-release suffix ("-rc1") is stripped before comparison.
func (c *Client) CheckHorizonVersion() error {
	horizon, horizonURL := c.currentHorizon()

	root, err := horizon.Root()
	if err != nil {
		return fmt.Errorf("failed to fetch Horizon root from %s: %w", horizonURL, err)
	}

	raw := strings.SplitN(root.HorizonVersion, "-", 2)[0]
	current, err := goversion.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("failed to parse Horizon version %q: %w", root.HorizonVersion, err)
	}

	minimum := goversion.Must(goversion.NewVersion(MinHorizonVersion))
	if current.LessThan(minimum) {
		return fmt.Errorf("horizon %s at %s is older than minimum supported %s", current, horizonURL, minimum)
	}

	logger.Logger.Debug("Horizon version check passed", "version", current.String(), "url", horizonURL)
	return nil
}

type GetLedgerEntriesRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type GetLedgerEntriesResponse struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Result  struct {
		Entries []struct {
			Key                string `json:"key"`
			Xdr                string `json:"xdr"`
			LastModifiedLedger int    `json:"lastModifiedLedgerSeq"`
			LiveUntilLedger    int    `json:"liveUntilLedgerSeq"`
		} `json:"entries"`
		LatestLedger int `json:"latestLedger"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GetLedgerEntries fetches the current state of ledger entries from Soroban RPC with automatic failover
// keys should be a list of base64-encoded XDR LedgerKeys
func (c *Client) GetLedgerEntries(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	for attempt := 0; attempt < len(c.AltURLs); attempt++ {
		entries, err := c.getLedgerEntriesAttempt(ctx, keys)
		if err == nil {
			return entries, nil
		}

		if attempt < len(c.AltURLs)-1 {
			logger.Logger.Warn("Retrying with fallback Soroban RPC...", "error", err)
			if !c.rotateURL() {
				break
			}
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("all Soroban RPC endpoints failed")
}

func (c *Client) getLedgerEntriesAttempt(ctx context.Context, keys []string) (map[string]string, error) {
	tracer := telemetry.GetTracer()
	_, span := tracer.Start(ctx, "rpc_get_ledger_entries")
	span.SetAttributes(
		attribute.Int("keys.count", len(keys)),
		attribute.String("rpc.url", c.SorobanURL),
	)
	defer span.End()

	logger.Logger.Debug("Fetching ledger entries", "count", len(keys), "url", c.SorobanURL)

	reqBody := GetLedgerEntriesRequest{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "getLedgerEntries",
		Params:  []interface{}{keys},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.SorobanURL, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to execute request to %s: %w", c.SorobanURL, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var rpcResp GetLedgerEntriesResponse
	if err := json.Unmarshal(respBytes, &rpcResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("rpc error from %s: %s (code %d)", c.SorobanURL, rpcResp.Error.Message, rpcResp.Error.Code)
	}

	entries := make(map[string]string)
	for _, entry := range rpcResp.Result.Entries {
		entries[entry.Key] = entry.Xdr
	}

	logger.Logger.Info("Ledger entries fetched successfully", "found", len(entries), "requested", len(keys), "url", c.SorobanURL)

	return entries, nil
}

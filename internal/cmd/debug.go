package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dotandev/erst/internal/analytics"
	"github.com/dotandev/erst/internal/cache"
	"github.com/dotandev/erst/internal/logger"
	"github.com/dotandev/erst/internal/rpc"
	"github.com/dotandev/erst/internal/simulator"
)

// Soroban RPC caps getLedgerEntries at 200 keys per call.
const ledgerEntryBatchSize = 200

var (
	networkFlag string
	rpcURLFlag  string
	noCacheFlag bool
	reportFlag  bool
)

var debugCmd = &cobra.Command{
	Use:   "debug <transaction-hash>",
	Short: "Debug a failed Soroban transaction",
	Long: `Fetch a transaction, pull the ledger entries its footprint declares,
and re-run it through the local simulator.

Examples:
  erst debug <tx-hash>
  erst debug --network testnet <tx-hash>
  erst debug --report <tx-hash>`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		switch rpc.Network(networkFlag) {
		case rpc.Testnet, rpc.Mainnet, rpc.Futurenet:
			return nil
		default:
			return fmt.Errorf("invalid network: %s", networkFlag)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		txHash := args[0]
		var client *rpc.Client
		if rpcURLFlag != "" {
			client = rpc.NewClientWithURL(rpcURLFlag, rpc.Network(networkFlag))
		} else {
			client = rpc.NewClient(rpc.Network(networkFlag))
		}

		fmt.Printf("Debugging: %s\n", txHash)
		fmt.Printf("Network: %s\n", networkFlag)
		if rpcURLFlag != "" {
			fmt.Printf("RPC: %s\n", rpcURLFlag)
		}

		tx, err := fetchTransaction(cmd, client, txHash)
		if err != nil {
			return err
		}
		fmt.Printf("Transaction fetched. Envelope: %d bytes\n", len(tx.EnvelopeXdr))

		envelope, err := simulator.DecodeEnvelope(tx.EnvelopeXdr)
		if err != nil {
			return err
		}

		keys, err := simulator.FootprintKeys(envelope)
		if err != nil {
			return err
		}

		entries := map[string]string{}
		if len(keys) > 0 {
			bar := progressbar.Default(int64(len(keys)), "Fetching ledger entries")
			for start := 0; start < len(keys); start += ledgerEntryBatchSize {
				end := min(start+ledgerEntryBatchSize, len(keys))
				batch, err := client.GetLedgerEntries(cmd.Context(), keys[start:end])
				if err != nil {
					return fmt.Errorf("ledger entry fetch failed: %w", err)
				}
				for k, v := range batch {
					entries[k] = v
				}
				bar.Add(end - start)
			}
		}

		request := &simulator.SimulationRequest{
			EnvelopeXdr:   tx.EnvelopeXdr,
			ResultMetaXdr: tx.ResultMetaXdr,
			LedgerEntries: entries,
		}
		response := simulator.New().Run(cmd.Context(), request)

		out, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if reportFlag && tx.ResultMetaXdr != "" {
			meta, err := simulator.DecodeResultMeta(tx.ResultMetaXdr)
			if err != nil {
				return err
			}
			report, err := analytics.ComputeStorageGrowth(meta)
			if err != nil {
				return fmt.Errorf("failed to compute storage growth: %w", err)
			}
			analytics.PrintStorageReport(report, analytics.ResourceFee(envelope))
		}
		return nil
	},
}

// fetchTransaction consults the on-disk cache before hitting Horizon.
func fetchTransaction(cmd *cobra.Command, client *rpc.Client, txHash string) (*rpc.TransactionResponse, error) {
	if noCacheFlag {
		return client.GetTransaction(cmd.Context(), txHash)
	}

	store, err := cache.Open(cachePath())
	if err != nil {
		logger.Logger.Warn("Cache unavailable, fetching directly", "error", err)
		return client.GetTransaction(cmd.Context(), txHash)
	}
	defer store.Close()

	if cached, err := store.Get(networkFlag, txHash); err == nil && cached != nil {
		logger.Logger.Debug("Cache hit", "hash", txHash)
		return &rpc.TransactionResponse{
			EnvelopeXdr:   cached.EnvelopeXdr,
			ResultXdr:     cached.ResultXdr,
			ResultMetaXdr: cached.ResultMetaXdr,
		}, nil
	}

	tx, err := client.GetTransaction(cmd.Context(), txHash)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	putErr := store.Put(networkFlag, txHash, &cache.Transaction{
		EnvelopeXdr:   tx.EnvelopeXdr,
		ResultXdr:     tx.ResultXdr,
		ResultMetaXdr: tx.ResultMetaXdr,
	})
	if putErr != nil {
		logger.Logger.Warn("Failed to cache transaction", "error", putErr)
	}
	return tx, nil
}

func cachePath() string {
	if path := os.Getenv("ERST_CACHE"); path != "" {
		return path
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "erst-cache.db"
	}
	dir = filepath.Join(dir, "erst")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "erst-cache.db"
	}
	return filepath.Join(dir, "transactions.db")
}

func init() {
	debugCmd.Flags().StringVarP(&networkFlag, "network", "n", string(rpc.Mainnet), "Network (testnet, mainnet, futurenet)")
	debugCmd.Flags().StringVar(&rpcURLFlag, "rpc-url", "", "Custom RPC URL")
	debugCmd.Flags().BoolVar(&noCacheFlag, "no-cache", false, "Skip the local transaction cache")
	debugCmd.Flags().BoolVar(&reportFlag, "report", false, "Print a storage growth report from the result meta")
	rootCmd.AddCommand(debugCmd)
}

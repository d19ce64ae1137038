package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotandev/erst/internal/simulator"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [request-file]",
	Short: "Run one transaction simulation from a JSON request",
	Long: `Read a simulation request (envelope_xdr, optional result_meta_xdr and
ledger_entries) from Stdin or a file, run it against a fresh execution host
and write the simulation response JSON to Stdout.

Examples:
  erst simulate < request.json
  erst simulate request.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		var err error
		if len(args) == 1 {
			raw, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read request file: %w", err)
			}
		} else {
			raw, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
		}

		response := simulator.New().RunRaw(cmd.Context(), raw)

		out, err := json.Marshal(response)
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotandev/erst/internal/rpc"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var checkFlag bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the erst version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "erst %s\n", Version)

		if checkFlag {
			client := rpc.NewClient(rpc.Network(networkFlag))
			if err := client.CheckHorizonVersion(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Horizon version: supported")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&checkFlag, "check", false, "Also verify the connected Horizon version")
	versionCmd.Flags().StringVarP(&networkFlag, "network", "n", string(rpc.Mainnet), "Network (testnet, mainnet, futurenet)")
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var blockCmd = &cobra.Command{
	Use:   "block <hash>",
	Short: "Print the block with the hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/block/"+args[0], nil)
	},
}

var txCmd = &cobra.Command{
	Use:   "tx <id>",
	Short: "Print the confirmed transaction with the id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/transaction/"+args[0], nil)
	},
}

var proofCmd = &cobra.Command{
	Use:   "proof <id>",
	Short: "Print the merkle inclusion proof of the confirmed transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/transaction/"+args[0]+"/proof", nil)
	},
}

var addressCmd = &cobra.Command{
	Use:   "address [address]",
	Short: "Print the transactions and balance of the address, defaults to the account key",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return call(http.MethodGet, "/address/"+args[0], nil)
		}

		address, err := accountAddress()
		if err != nil {
			return err
		}

		return call(http.MethodGet, "/address/"+address, nil)
	},
}

func init() {
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(txCmd)
	rootCmd.AddCommand(proofCmd)
	rootCmd.AddCommand(addressCmd)
}

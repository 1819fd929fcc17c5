package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the full state of the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/blockchain", nil)
	},
}

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine the next block with the pending transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/mine", nil)
	},
}

var consensusCmd = &cobra.Command{
	Use:   "consensus",
	Short: "Replace the chain of the node with the longest chain in the network",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/consensus", nil)
	},
}

var merkleCmd = &cobra.Command{
	Use:   "merkle",
	Short: "Print the merkle root of the pending transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodPost, "/merkle-tree", nil)
	},
}

func init() {
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(consensusCmd)
	rootCmd.AddCommand(merkleCmd)
}

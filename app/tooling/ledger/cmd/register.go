package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <node-url>",
	Short: "Register a new node with the network through the node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := struct {
			NewNodeURL string `json:"newNodeUrl"`
		}{
			NewNodeURL: args[0],
		}

		return call(http.MethodPost, "/register-and-broadcast-node", body)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

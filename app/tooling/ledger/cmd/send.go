package cmd

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	from   string
	to     string
	amount float64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a transaction to the network",
	RunE: func(cmd *cobra.Command, args []string) error {
		sender := from
		if sender == "" {
			address, err := accountAddress()
			if err != nil {
				return err
			}
			sender = address
		}

		if to == "" {
			return errors.New("recipient is required")
		}

		tx := struct {
			Amount    float64 `json:"amount"`
			Sender    string  `json:"sender"`
			Recipient string  `json:"recipient"`
		}{
			Amount:    amount,
			Sender:    sender,
			Recipient: to,
		}

		return call(http.MethodPost, "/transaction/broadcast", tx)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&from, "from", "f", "", "Sender address, defaults to the address of the account key.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Recipient address.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "v", 0, "Amount to send.")
}

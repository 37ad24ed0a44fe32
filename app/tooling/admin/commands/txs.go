package commands

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	txOffset int
	txSize   int
)

type txEvent struct {
	ID        string `json:"id"`
	TimeStamp uint32 `json:"timestamp"`
	To        string `json:"to"`
	Amount    uint64 `json:"amount"`
	Reason    string `json:"reason"`
}

type txList struct {
	Txs   []txEvent `json:"txs"`
	Total int       `json:"total"`
}

var txsCmd = &cobra.Command{
	Use:   "txs",
	Short: "Print a page of the transaction log.",
	Run:   txsRun,
}

func init() {
	rootCmd.AddCommand(txsCmd)
	txsCmd.Flags().IntVarP(&txOffset, "offset", "o", 0, "Offset into the transaction log.")
	txsCmd.Flags().IntVarP(&txSize, "size", "s", 25, "Number of transactions to print.")
}

func txsRun(cmd *cobra.Command, args []string) {
	var list txList
	if err := get(fmt.Sprintf("%s/v1/tx/list/%d/%d", publicURL, txOffset, txSize), &list); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Total: %d\n\n", list.Total)

	for _, tx := range list.Txs {
		fmt.Printf("ID: %s  Time: %d  To: %s  Amount: %d  Reason: %s\n",
			tx.ID, tx.TimeStamp, tx.To, tx.Amount, tx.Reason)
	}
}

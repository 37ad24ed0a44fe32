package commands

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

type chainStatus struct {
	Height            uint32 `json:"height"`
	LastBlockID       string `json:"last_block_id"`
	AccumulatedReward uint64 `json:"accumulated_reward"`
	NextLogCursor     uint64 `json:"next_log_cursor"`
	NextReward        uint64 `json:"next_reward"`
	SchedulerStatus   string `json:"scheduler_status"`
	TotalTransactions int    `json:"total_transactions"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the chain and scheduler status.",
	Run:   statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(cmd *cobra.Command, args []string) {
	var status chainStatus
	if err := get(fmt.Sprintf("%s/v1/chain", publicURL), &status); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Height:       ", status.Height)
	fmt.Println("LastBlockID:  ", status.LastBlockID)
	fmt.Println("NextReward:   ", status.NextReward)
	fmt.Println("NextLogCursor:", status.NextLogCursor)
	fmt.Println("Scheduler:    ", status.SchedulerStatus)
	fmt.Println("Transactions: ", status.TotalTransactions)
}

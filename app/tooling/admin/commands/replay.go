package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	replayOffset int
	replaySize   int
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-send the payouts for a committed transaction range.",
	Run:   replayRun,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().IntVarP(&replayOffset, "offset", "o", 0, "Offset into the transaction log.")
	replayCmd.Flags().IntVarP(&replaySize, "size", "s", 100, "Number of transactions to replay.")
}

func replayRun(cmd *cobra.Command, args []string) {
	body := struct {
		Offset int `json:"offset"`
		Size   int `json:"size"`
	}{
		Offset: replayOffset,
		Size:   replaySize,
	}

	data, err := json.Marshal(body)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/payouts/replay", privateURL), "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("service returned status %s", resp.Status)
	}

	var result struct {
		Status   string `json:"status"`
		Replayed int    `json:"replayed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("replayed %d transactions\n", result.Replayed)
}

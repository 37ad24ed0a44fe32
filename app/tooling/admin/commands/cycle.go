package commands

import (
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Force a settlement cycle to run now.",
	Run:   cycleRun,
}

func init() {
	rootCmd.AddCommand(cycleCmd)
}

func cycleRun(cmd *cobra.Command, args []string) {
	resp, err := http.Post(fmt.Sprintf("%s/v1/chain/cycle", privateURL), "application/json", nil)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("service returned status %s", resp.Status)
	}

	fmt.Println("cycle completed")
}

// Package commands contains the admin tool commands.
package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var (
	publicURL  string
	privateURL string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&publicURL, "url", "u", "http://localhost:8080", "Url of the public API.")
	rootCmd.PersistentFlags().StringVarP(&privateURL, "private-url", "p", "http://localhost:9080", "Url of the private API.")
}

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Operate the minter service",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// get performs a GET against the service and decodes the JSON response.
func get(url string, response any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service returned status %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(response)
}

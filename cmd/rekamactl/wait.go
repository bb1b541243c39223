package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the Rekama server to be ready",
	Long: `Wait for the Rekama server to be ready by polling the status endpoint.

The status endpoint answers 503 while snapshots are failing, so a server
with a broken storage backend never becomes ready.

Example:
  rekamactl wait
  rekamactl wait --url http://localhost:3000 --retries 60`,
	Run: func(cmd *cobra.Command, args []string) {
		serverURL, _ := cmd.Flags().GetString("url")
		retries, _ := cmd.Flags().GetInt("retries")
		if serverURL == "" {
			serverURL = defaultServerURL()
		}

		if err := waitForServer(serverURL, retries, time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Server did not become ready: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().String("url", "", "server base URL (default from configuration)")
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
}

func waitForServer(serverURL string, retries int, interval time.Duration) error {
	url := strings.TrimRight(serverURL, "/") + "/api/status"
	client := &http.Client{Timeout: 2 * time.Second}

	fmt.Println("Waiting for Rekama to be ready...")

	for i := 0; i < retries; i++ {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode < 300 {
				fmt.Println()
				fmt.Println("Rekama is ready!")
				return nil
			}
		}

		fmt.Print(".")
		time.Sleep(interval)
	}

	fmt.Println()
	return fmt.Errorf("rekama is not ready after %d attempts", retries)
}

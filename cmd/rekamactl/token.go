package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyberarian/rekama-sys/pkg/server/endpoints"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage bearer tokens",
	Long:  `Obtain bearer tokens from a running Rekama server.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'token' requires a subcommand (issue)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <user-id>",
	Short: "Sign in as a user and print a bearer token",
	Long: `Sign in to a running Rekama server as a user and print the bearer token.

Sessions live in the server process, so the token is only valid against the
server that issued it, and only until the session idles out.

Example:
  export TOKEN="$(rekamactl token issue usr_officer)"
  curl -H "Authorization: Bearer $TOKEN" http://localhost:8080/api/records`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		serverURL, _ := cmd.Flags().GetString("url")
		if serverURL == "" {
			serverURL = defaultServerURL()
		}
		resp, err := issueToken(serverURL, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(resp.Token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)
	tokenIssueCmd.Flags().String("url", "", "server base URL (default from configuration)")
}

// defaultServerURL points at the configured port on the loopback address.
func defaultServerURL() string {
	port := 8080
	if cfg, err := loadConfig(); err == nil {
		port = cfg.Port
	}
	return fmt.Sprintf("http://localhost:%d", port)
}

func issueToken(serverURL, userID string) (*endpoints.SessionResponse, error) {
	body, err := json.Marshal(endpoints.LoginRequest{UserID: userID})
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(strings.TrimRight(serverURL, "/")+"/api/session", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var session endpoints.SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

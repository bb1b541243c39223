package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cyberarian/rekama-sys/pkg/store"
)

var rootCmd = &cobra.Command{
	Use:   "rekamactl",
	Short: "Rekama records governance server and administration tool",
	Long: `Rekama records governance server and administration tool.

Commands that change records run against the configured storage backend as
the user named by --as. Stop the server before running them against the
same snapshot.`,
}

func init() {
	rootCmd.PersistentFlags().String("as", store.SeedAdminID, "user id the command runs as")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

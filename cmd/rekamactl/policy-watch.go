package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cyberarian/rekama-sys/pkg/policy"
)

// policyWatchCmd represents the policy watch command
var policyWatchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and load policy documents as they change",
	Long: `Watch a directory and load policy documents as they change.

Every document already in the directory is loaded first. After that, each
.md or .yml document written to the directory is loaded again.

Example:
  rekamactl policy watch /etc/rekama/policies`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := watchPolicies(cmd, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch policies: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	policyCmd.AddCommand(policyWatchCmd)
}

func watchPolicies(cmd *cobra.Command, dir string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, caller := mustOpen(cmd)
	defer a.Close()

	loader := policy.NewLoader(a.service, caller).WithLogger(a.logger)
	fmt.Printf("Watching %s for policy changes...\n", dir)
	return loader.Watch(ctx, dir, func(path string, res *policy.LoadResult, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", path, err)
			return
		}
		printLoadResult(path, res)
	})
}

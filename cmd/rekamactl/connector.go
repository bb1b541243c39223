package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyberarian/rekama-sys/pkg/connector"
)

// connectorCmd represents the connector command
var connectorCmd = &cobra.Command{
	Use:   "connector",
	Short: "Manage connectors",
	Long:  `List and synchronize connectors.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'connector' requires a subcommand (list, sync)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var connectorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connectors",
	Run: func(cmd *cobra.Command, args []string) {
		a, _ := mustOpen(cmd)
		defer a.Close()

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTATUS\tITEMS\tLAST SYNC")
		for _, c := range a.engine.Connectors() {
			lastSync := "never"
			if !c.LastSync.IsZero() {
				lastSync = c.LastSync.Format(time.RFC3339)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", c.ID, c.Name, c.Type, c.Status, c.ItemsIndexed, lastSync)
		}
		_ = tw.Flush()
	},
}

var connectorSyncCmd = &cobra.Command{
	Use:   "sync [id]",
	Short: "Synchronize a connector",
	Long: `Synchronize one connector, or every connector that is not paused
when --all is given.

Example:
  rekamactl connector sync conn_google_drive_01
  rekamactl connector sync --all`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		all, _ := cmd.Flags().GetBool("all")
		if all == (len(args) == 1) {
			fmt.Fprintln(os.Stderr, "error: give a connector id or --all")
			os.Exit(1)
		}
		if err := runConnectorSync(cmd, args, all); err != nil {
			fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(connectorCmd)
	connectorCmd.AddCommand(connectorListCmd)
	connectorCmd.AddCommand(connectorSyncCmd)

	connectorSyncCmd.Flags().Bool("all", false, "sync every connector that is not paused")
}

func runConnectorSync(cmd *cobra.Command, args []string, all bool) error {
	a, caller := mustOpen(cmd)
	defer a.Close()

	if all {
		scheduler := connector.NewScheduler(a.engine, caller, 0, a.logger)
		results, err := scheduler.SyncAll(cmd.Context())
		for _, res := range results {
			fmt.Printf("%s: %d discovered, %d indexed\n", res.Connector.Name, len(res.Discovered), res.Connector.ItemsIndexed)
		}
		return err
	}

	res, err := a.engine.Sync(cmd.Context(), caller, args[0])
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Printf("%s is paused; nothing to do\n", res.Connector.Name)
		return nil
	}
	for _, r := range res.Discovered {
		fmt.Printf("discovered %s %q\n", r.ID, r.Title)
	}
	fmt.Printf("%s: %d discovered, %d indexed\n", res.Connector.Name, len(res.Discovered), res.Connector.ItemsIndexed)
	return nil
}

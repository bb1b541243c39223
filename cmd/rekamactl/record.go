package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// recordCmd represents the record command
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage records",
	Long:  `List and dispose of document records.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'record' requires a subcommand (list, dispose)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var recordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records",
	Long: `List records, optionally only those discovered by one source.

Example:
  rekamactl record list
  rekamactl record list --source "Shared Team Drive"`,
	Run: func(cmd *cobra.Command, args []string) {
		source, _ := cmd.Flags().GetString("source")
		a, _ := mustOpen(cmd)
		defer a.Close()

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tCLASSIFICATION\tSOURCE\tHOLD\tDISPOSAL")
		for _, r := range a.service.Records() {
			if source != "" && r.Source != source {
				continue
			}
			disposal := "-"
			if r.DisposalDate != nil {
				disposal = r.DisposalDate.Format("2006-01-02")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
				r.ID, r.Title, r.Status, r.Classification, r.Source, r.LegalHold, disposal)
		}
		_ = tw.Flush()
	},
}

var recordDisposeCmd = &cobra.Command{
	Use:   "dispose <id>",
	Short: "Dispose of a record",
	Long: `Dispose of a record and print its destruction certificate.

Records under legal hold cannot be disposed of.

Example:
  rekamactl record dispose rec_001`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDispose(cmd, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Disposal failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.AddCommand(recordListCmd)
	recordCmd.AddCommand(recordDisposeCmd)

	recordListCmd.Flags().String("source", "", "only list records from this source")
}

func runDispose(cmd *cobra.Command, id string) error {
	a, caller := mustOpen(cmd)
	defer a.Close()

	cert, err := a.service.DisposeRecord(cmd.Context(), caller, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(cert)
}

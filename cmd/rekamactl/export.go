package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cyberarian/rekama-sys/pkg/store"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the record store as JSON",
	Long: `Export the record store as JSON.

The export holds every record, policy, schedule, connector, user and audit
entry, the settings and the compliance block. A DATA_EXPORT entry is added
to the audit trail.

Example:
  rekamactl export --out rekama-export.json`,
	Run: func(cmd *cobra.Command, args []string) {
		out, _ := cmd.Flags().GetString("out")
		if err := runExport(cmd, out); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
	},
}

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the record store with an export",
	Long: `Replace the record store with the contents of an export file.

Example:
  rekamactl import rekama-export.json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runImport(cmd, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Import complete")
	},
}

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Factory reset the record store",
	Long: fmt.Sprintf(`Factory reset the record store.

Every record, policy, schedule, connector, user and audit entry is removed
and the demo data set is seeded again. The confirmation phrase must be
given exactly.

Example:
  rekamactl reset --confirm %q`, store.ResetConfirmation),
	Run: func(cmd *cobra.Command, args []string) {
		confirm, _ := cmd.Flags().GetString("confirm")
		if err := runReset(cmd, confirm); err != nil {
			fmt.Fprintf(os.Stderr, "Reset failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Record store reset")
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)

	exportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	resetCmd.Flags().String("confirm", "", "confirmation phrase")
}

func runExport(cmd *cobra.Command, out string) error {
	a, caller := mustOpen(cmd)
	defer a.Close()

	exp, err := a.service.Export(cmd.Context(), caller)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exp); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if out != "" {
		fmt.Fprintf(os.Stderr, "Exported %d records to %s\n", len(exp.Records), out)
	}
	return nil
}

func runImport(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var exp store.Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	a, caller := mustOpen(cmd)
	defer a.Close()
	return a.service.Import(cmd.Context(), caller, exp)
}

func runReset(cmd *cobra.Command, confirm string) error {
	a, caller := mustOpen(cmd)
	defer a.Close()
	return a.service.FactoryReset(cmd.Context(), caller, confirm)
}

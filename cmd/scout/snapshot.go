package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scout/internal/app"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export and import encrypted workspace snapshots",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Upload an encrypted copy of the workspace to the vault",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			id, err := a.ExportSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported snapshot %s\n", id)
			return nil
		})
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots of the workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			ids, err := a.Service().ListSnapshots()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snapshots.")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import [ID]",
	Short: "Replace the workspace with a snapshot (default: latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		if len(args) == 1 {
			id = args[0]
		}

		return withApp(cmd, func(a *app.App) error {
			var passphrase string
			if a.NeedsPassphrase() {
				p, err := readPassphrase("Passphrase: ")
				if err != nil {
					return err
				}
				passphrase = p
			}

			restored, err := a.ImportSnapshot(cmd.Context(), id, passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot %s into workspace %s\n", restored, a.Workspace())
			return nil
		})
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scout/internal/app"
)

var selectCmd = &cobra.Command{
	Use:   "select KIND [WHERE CONDITION...]",
	Short: "List entities, optionally filtered",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			rows, err := a.Service().Select(args[0], args[1:])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range rows {
				fmt.Fprintln(out, formatEntity(e))
			}
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete KIND WHERE CONDITION...",
	Short: "Delete matching entities and everything that depends on them",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		return withApp(cmd, func(a *app.App) error {
			if !yes {
				rows, err := a.Service().Select(args[0], args[1:])
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to delete.")
					return nil
				}
				ok, err := confirm(fmt.Sprintf("Delete %d %s?", len(rows), args[0]))
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("aborted")
				}
			}

			n, err := a.Service().Delete(args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d row(s)\n", n)
			return nil
		})
	},
}

var scopeCmd = &cobra.Command{
	Use:   "scope KIND WHERE CONDITION...",
	Short: "Mark matching entities as in scope",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			n, err := a.Service().Scope(args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scoped %d row(s)\n", n)
			return nil
		})
	},
}

var noscopeCmd = &cobra.Command{
	Use:   "noscope KIND WHERE CONDITION...",
	Short: "Mark matching entities as out of scope",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			n, err := a.Service().Noscope(args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unscoped %d row(s)\n", n)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count entities per kind",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			stats, err := a.Service().Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Workspace %s\n", a.Workspace())
			for _, s := range stats {
				fmt.Fprintf(out, "  %-18s %d\n", s.Kind, s.Count)
			}
			return nil
		})
	},
}

func init() {
	// Filter tokens such as "-1" must not be taken for flags.
	for _, c := range []*cobra.Command{selectCmd, deleteCmd, scopeCmd, noscopeCmd} {
		c.Flags().SetInterspersed(false)
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

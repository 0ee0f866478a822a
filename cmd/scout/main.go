package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"scout/internal/app"
	"scout/internal/config"
)

func main() {
	// SCOUT_* and AWS_* settings may live in a .env next to the workspace.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	workspaceFlag string
	vaultFlag     string
)

var rootCmd = &cobra.Command{
	Use:          "scout",
	Short:        "Reconnaissance workspace",
	SilenceUsage: true,
}

// loadConfig reads the config file from the default location.
func loadConfig() (*config.Config, string, error) {
	path := app.GetDefaults().ConfigPath
	cfg, err := config.ReadFromFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("reading config (run 'scout config init' first): %w", err)
	}
	return cfg, path, nil
}

// withApp opens the workspace for one command and closes it with the
// command's outcome.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) (err error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cfg, app.Options{
		Operation: cmd.CommandPath(),
		Workspace: workspaceFlag,
		Vault:     vaultFlag,
		Stderr:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(err); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(a)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "Workspace to operate on (default from config)")
	rootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "Vault name for snapshots (default: first configured)")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(encryptionCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(scopeCmd)
	rootCmd.AddCommand(noscopeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(snapshotCmd)
}

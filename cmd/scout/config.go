package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scout/internal/app"
	"scout/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults := app.GetDefaults()

		workspace := workspaceFlag
		if workspace == "" {
			workspace = config.DefaultWorkspace
		}
		cfg := config.NewConfig(workspace, defaults.BaseDir)

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Fprintf(out, "Workspace: %s\n", workspace)
		fmt.Fprintf(out, "Base Dir:  %s\n", defaults.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", path)
		fmt.Fprintf(out, "Workspace:  %s\n", cfg.Workspace)
		fmt.Fprintf(out, "Base Dir:   %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:    %s (%s)\n", cfg.LogDir, cfg.LogLevel)
		fmt.Fprintf(out, "Database:   %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Fprintf(out, "Encryption: %s\n", cfg.Encryption.Type)
		for _, v := range cfg.Vaults {
			fmt.Fprintf(out, "Vault:      %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
}

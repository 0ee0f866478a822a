package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scout/internal/app"
)

var encryptionCmd = &cobra.Command{
	Use:   "encryption",
	Short: "Manage snapshot encryption",
}

var encryptionSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Generate the snapshot key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		again, err := readPassphrase("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != again {
			return fmt.Errorf("passphrases do not match")
		}

		if err := app.SetupEncryption(cfg, passphrase); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Keys written to %s and %s\n", cfg.Encryption.PublicKeyPath, cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

func init() {
	encryptionCmd.AddCommand(encryptionSetupCmd)
}

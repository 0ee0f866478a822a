package testutil

import (
	"scout/internal/recon"
	"scout/internal/vault"
)

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() recon.Vault {
	return vault.NewMemoryVault("test-vault")
}

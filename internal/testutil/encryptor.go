package testutil

import (
	"scout/internal/encryption"
	"scout/internal/recon"
)

// NewTestEncryptor returns the keyless frame encryptor used for snapshot
// tests.
func NewTestEncryptor() recon.Encryptor {
	return encryption.NewFrameEncryptor()
}

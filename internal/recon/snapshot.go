package recon

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// snapshotTimeLayout makes snapshot ids sort chronologically.
const snapshotTimeLayout = "20060102T150405Z"

// ExportSnapshot copies the workspace database, encrypts the copy and stores
// it in the vault. It returns the new snapshot id.
func (s *Service) ExportSnapshot() (string, error) {
	workspace, err := s.snapshotTarget()
	if err != nil {
		return "", err
	}

	tmp, err := os.MkdirTemp("", "scout-export-*")
	if err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	plainPath := filepath.Join(tmp, workspace+".db")
	if err := s.database.BackupTo(plainPath); err != nil {
		return "", fmt.Errorf("copying workspace: %w", err)
	}

	sealedPath := filepath.Join(tmp, workspace+".snap")
	if err := s.encryptFile(plainPath, sealedPath); err != nil {
		return "", err
	}

	sealed, err := os.Open(sealedPath)
	if err != nil {
		return "", fmt.Errorf("opening encrypted snapshot: %w", err)
	}
	defer sealed.Close()
	info, err := sealed.Stat()
	if err != nil {
		return "", fmt.Errorf("stat encrypted snapshot: %w", err)
	}

	id := s.snapshotID()
	if err := s.vault.PutSnapshot(workspace, id, sealed, info.Size()); err != nil {
		return "", fmt.Errorf("storing snapshot in vault %s: %w", s.vault.Name(), err)
	}

	s.logger.Info("snapshot exported", "workspace", workspace, "id", id, "vault", s.vault.Name(), "bytes", info.Size())
	return id, nil
}

func (s *Service) encryptFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening workspace copy: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	if err := s.encryptor.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing encrypted snapshot: %w", err)
	}
	return nil
}

func (s *Service) snapshotID() string {
	suffix := s.idgen.New()
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return s.clock.Now().UTC().Format(snapshotTimeLayout) + "-" + suffix
}

// ListSnapshots returns the snapshot ids of the workspace, oldest first.
func (s *Service) ListSnapshots() ([]string, error) {
	workspace, err := s.snapshotTarget()
	if err != nil {
		return nil, err
	}
	ids, err := s.vault.ListSnapshots(workspace)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots in vault %s: %w", s.vault.Name(), err)
	}
	return ids, nil
}

// ImportSnapshot replaces the workspace contents with a stored snapshot. An
// empty id selects the most recent one. The restored id is returned.
func (s *Service) ImportSnapshot(id, passphrase string) (string, error) {
	workspace, err := s.snapshotTarget()
	if err != nil {
		return "", err
	}
	if id != "" {
		if err := ValidateSnapshotID(id); err != nil {
			return "", err
		}
	}

	// Unlock first so a wrong passphrase fails before any download.
	dc, err := s.encryptor.Unlock(passphrase)
	if err != nil {
		return "", fmt.Errorf("unlocking private key: %w", err)
	}

	if id == "" {
		ids, err := s.vault.ListSnapshots(workspace)
		if err != nil {
			return "", fmt.Errorf("listing snapshots in vault %s: %w", s.vault.Name(), err)
		}
		if len(ids) == 0 {
			return "", fmt.Errorf("%w: workspace %s has no snapshots", ErrSnapshotNotFound, workspace)
		}
		id = ids[len(ids)-1]
	}

	tmp, err := os.MkdirTemp("", "scout-import-*")
	if err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	sealedPath := filepath.Join(tmp, id+".snap")
	sealed, err := os.OpenFile(sealedPath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	defer sealed.Close()
	if err := s.vault.GetSnapshot(workspace, id, sealed); err != nil {
		return "", fmt.Errorf("fetching snapshot %s: %w", id, err)
	}
	if _, err := sealed.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewinding snapshot: %w", err)
	}

	plainPath := filepath.Join(tmp, workspace+".db")
	plain, err := os.OpenFile(plainPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("creating decrypted snapshot: %w", err)
	}
	if err := dc.Decrypt(sealed, plain); err != nil {
		plain.Close()
		return "", fmt.Errorf("decrypting snapshot %s: %w", id, err)
	}
	if err := plain.Close(); err != nil {
		return "", fmt.Errorf("closing decrypted snapshot: %w", err)
	}

	if err := s.database.RestoreFrom(plainPath); err != nil {
		return "", fmt.Errorf("restoring snapshot %s: %w", id, err)
	}

	s.logger.Info("snapshot imported", "workspace", workspace, "id", id, "vault", s.vault.Name())
	return id, nil
}

func (s *Service) snapshotTarget() (string, error) {
	if s.vault == nil {
		return "", ErrNoVault
	}
	if s.encryptor == nil {
		return "", fmt.Errorf("no encryptor configured")
	}
	workspace := s.database.Name()
	if workspace == "" {
		return "", fmt.Errorf("database is not a named workspace")
	}
	return workspace, nil
}

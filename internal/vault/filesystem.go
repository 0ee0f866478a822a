package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"scout/internal/recon"
)

const snapshotExt = ".snap"

// FileSystemVault stores snapshots as files in a directory structure:
//
//	<root>/
//	  snapshots/
//	    <workspace>/
//	      <id>.snap
type FileSystemVault struct {
	name         string
	root         string
	snapshotsDir string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	snapshotsDir := filepath.Join(root, "snapshots")
	if err := os.MkdirAll(snapshotsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}

	return &FileSystemVault{
		name:         name,
		root:         root,
		snapshotsDir: snapshotsDir,
	}, nil
}

func (v *FileSystemVault) Name() string {
	return v.name
}

// PutSnapshot writes the snapshot atomically; readers never see a partial file.
func (v *FileSystemVault) PutSnapshot(workspace, id string, r io.Reader, size int64) error {
	path, err := v.snapshotPath(workspace, id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	return v.writeFile(path, r, size)
}

// GetSnapshot writes a stored snapshot to w.
func (v *FileSystemVault) GetSnapshot(workspace, id string, w io.Writer) error {
	path, err := v.snapshotPath(workspace, id)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s/%s", recon.ErrSnapshotNotFound, workspace, id)
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return nil
}

// snapshotPath keeps workspace and id as single path elements under the
// snapshots directory.
func (v *FileSystemVault) snapshotPath(workspace, id string) (string, error) {
	for _, part := range []string{workspace, id} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("invalid path element %q", part)
		}
	}
	return filepath.Join(v.snapshotsDir, workspace, id+snapshotExt), nil
}

// ListSnapshots returns the ids stored for workspace, sorted. Temp files
// from interrupted writes are skipped.
func (v *FileSystemVault) ListSnapshots(workspace string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(v.snapshotsDir, workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, snapshotExt))
	}
	slices.Sort(ids)
	return ids, nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup() error {
	for _, dir := range []string{v.root, v.snapshotsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}

// Compile-time check that FileSystemVault implements recon.Vault interface
var _ recon.Vault = (*FileSystemVault)(nil)

package vault

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"sync"

	"scout/internal/recon"
)

// MemoryVault keeps snapshots in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name      string
	snapshots map[string]map[string][]byte // workspace -> id -> data
	mu        sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:      name,
		snapshots: make(map[string]map[string][]byte),
	}
}

func (m *MemoryVault) Name() string {
	return m.name
}

// PutSnapshot stores a snapshot. Storing the same id twice replaces it.
func (m *MemoryVault) PutSnapshot(workspace, id string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshots[workspace] == nil {
		m.snapshots[workspace] = make(map[string][]byte)
	}
	m.snapshots[workspace][id] = data
	return nil
}

// GetSnapshot writes a stored snapshot to w.
func (m *MemoryVault) GetSnapshot(workspace, id string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.snapshots[workspace][id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", recon.ErrSnapshotNotFound, workspace, id)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns the ids stored for workspace, sorted.
func (m *MemoryVault) ListSnapshots(workspace string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id := range m.snapshots[workspace] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryVault implements recon.Vault interface
var _ recon.Vault = (*MemoryVault)(nil)

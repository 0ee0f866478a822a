package recon

import (
	"errors"
	"fmt"
	"io"
	"regexp"
)

// ErrSnapshotNotFound is returned by vaults for an unknown workspace or
// snapshot id.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrInvalidSnapshotID is returned for an id that ExportSnapshot could not
// have produced.
var ErrInvalidSnapshotID = errors.New("invalid snapshot id")

// snapshotIDPattern matches "<UTC timestamp>-<up to 8 id characters>".
var snapshotIDPattern = regexp.MustCompile(`^[0-9]{8}T[0-9]{6}Z-[0-9A-Za-z-]{1,8}$`)

// ValidateSnapshotID rejects ids that are not of the form
// 20060102T150405Z-xxxxxxxx.
func ValidateSnapshotID(id string) error {
	if !snapshotIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidSnapshotID, id)
	}
	return nil
}

// Vault stores encrypted workspace snapshots. All operations stream, so a
// snapshot is never held in memory as a whole.
type Vault interface {
	// Name returns the configured vault name.
	Name() string

	// PutSnapshot stores a snapshot of workspace under id. size is the number
	// of bytes that will be read from r.
	PutSnapshot(workspace, id string, r io.Reader, size int64) error

	// GetSnapshot writes the snapshot of workspace with the given id to w.
	GetSnapshot(workspace, id string, w io.Writer) error

	// ListSnapshots returns the snapshot ids of workspace in ascending order.
	// Ids sort chronologically, so the last one is the newest.
	ListSnapshots(workspace string) ([]string, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}

package testutil

import (
	"testing"

	"scout/internal/config"
	"scout/internal/database"
	"scout/internal/recon"
)

// TestWorkspace is the workspace name of databases from NewTestDatabase.
const TestWorkspace = "test"

// NewTestDatabase creates a migrated in-memory database for TestWorkspace.
// The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T) recon.Database {
	t.Helper()

	db, err := database.NewDatabaseFromConfig(config.DatabaseConfig{Type: "memory"}, TestWorkspace, nil)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

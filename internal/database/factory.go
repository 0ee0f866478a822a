package database

import (
	"fmt"

	"scout/internal/config"
	"scout/internal/recon"
)

// NewDatabaseFromConfig opens the database of the given workspace based on
// the database config type.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, workspace string, logger recon.Logger) (recon.Database, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		db, err := Establish(workspace, cfg.DataDir, logger)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "memory":
		if !config.ValidWorkspaceName(workspace) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, workspace)
		}
		db, err := NewSQLiteDatabase(":memory:", logger)
		if err != nil {
			return nil, err
		}
		db.name = workspace
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

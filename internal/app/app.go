// Package app wires configuration, logging, storage and snapshots into the
// recon service used by the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"scout/internal/config"
	"scout/internal/database"
	"scout/internal/encryption"
	"scout/internal/recon"
	"scout/internal/vault"
	"scout/internal/worker"
)

// Options select what a command needs beyond the config file.
type Options struct {
	Operation string    // command name, logged on Close
	Workspace string    // overrides cfg.Workspace when set
	Vault     string    // vault name; "" picks the first configured vault
	Stderr    io.Writer // spinner and warnings; defaults to os.Stderr
}

// App owns the resources of one CLI invocation. The caller must call Close.
type App struct {
	cfg       *config.Config
	workspace string
	db        recon.Database
	vault     recon.Vault
	service   *recon.Service
	op        *Operation
	logger    *slog.Logger
	logFile   *os.File
	stderr    io.Writer
	clock     recon.Clock
}

// New opens the workspace database and builds the service from cfg.
func New(cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	workspace := cfg.Workspace
	if opts.Workspace != "" {
		workspace = opts.Workspace
	}
	if workspace == "" {
		workspace = config.DefaultWorkspace
	}
	if !config.ValidWorkspaceName(workspace) {
		return nil, fmt.Errorf("%w: %q", database.ErrInvalidName, workspace)
	}

	clock := recon.RealClock{}
	op := NewOperation(opts.Operation, clock.Now())
	logger, logFile, err := newLogger(cfg.LogDir, cfg.LogLevel, op.ID, stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger = logger.With("workspace", workspace)
	adapter := &slogAdapter{l: logger}

	a := &App{
		cfg:       cfg,
		workspace: workspace,
		op:        op,
		logger:    logger,
		logFile:   logFile,
		stderr:    stderr,
		clock:     clock,
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		a.closeLog()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	if len(cfg.Vaults) > 0 {
		vc, err := cfg.Vault(opts.Vault)
		if err != nil {
			a.closeLog()
			return nil, err
		}
		v, err := vault.NewVaultFromConfig(vc)
		if err != nil {
			a.closeLog()
			return nil, fmt.Errorf("creating vault: %w", err)
		}
		a.vault = v
	} else if opts.Vault != "" {
		a.closeLog()
		return nil, fmt.Errorf("vault %q not configured", opts.Vault)
	}

	db, err := worker.Spawn(context.Background(), stderr, "Connecting to database", func(context.Context) (recon.Database, error) {
		return database.NewDatabaseFromConfig(cfg.Database, workspace, adapter)
	})
	if err != nil {
		a.closeLog()
		return nil, fmt.Errorf("opening workspace %s: %w", workspace, err)
	}
	if err := db.CheckMigrations(); err != nil {
		db.Close()
		a.closeLog()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}
	a.db = db

	a.service = recon.NewService(db, a.vault, enc, adapter, clock, recon.UUIDGenerator{})
	logger.Debug("operation started", "operation", op.Name)
	return a, nil
}

// Service returns the recon service for the open workspace.
func (a *App) Service() *recon.Service {
	return a.service
}

// Workspace returns the name of the open workspace.
func (a *App) Workspace() string {
	return a.workspace
}

// NeedsPassphrase reports whether importing a snapshot unlocks a private key.
func (a *App) NeedsPassphrase() bool {
	switch a.cfg.Encryption.Type {
	case "", "age":
		return true
	}
	return false
}

// ExportSnapshot exports the workspace while a spinner runs.
func (a *App) ExportSnapshot(ctx context.Context) (string, error) {
	return worker.Spawn(ctx, a.stderr, "Uploading snapshot", func(context.Context) (string, error) {
		return a.service.ExportSnapshot()
	})
}

// ImportSnapshot restores the workspace from a snapshot while a spinner runs.
func (a *App) ImportSnapshot(ctx context.Context, id, passphrase string) (string, error) {
	return worker.Spawn(ctx, a.stderr, "Restoring snapshot", func(context.Context) (string, error) {
		return a.service.ImportSnapshot(id, passphrase)
	})
}

// Close records the outcome of the command, then closes the database and the
// log file. opErr is the error the command is about to report, if any.
func (a *App) Close(opErr error) error {
	elapsed := a.op.Finish(opErr, a.clock.Now())
	if opErr != nil {
		a.logger.Error("operation failed", "operation", a.op.Name, "elapsed", elapsed, "error", opErr)
	} else {
		a.logger.Info("operation finished", "operation", a.op.Name, "elapsed", elapsed)
	}

	var errs []error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	if err := a.closeLog(); err != nil {
		errs = append(errs, fmt.Errorf("closing log: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) closeLog() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

// SetupEncryption generates the snapshot key pair described by cfg.
func SetupEncryption(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption: %w", err)
	}
	return nil
}

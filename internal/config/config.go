package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
)

// DefaultWorkspace is used when neither the config nor the command line
// names a workspace.
const DefaultWorkspace = "default"

var workspaceName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config represents the main configuration for scout.
type Config struct {
	Workspace  string           `toml:"workspace"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	LogLevel   string           `toml:"log_level"` // "debug", "info" (default), "warn" or "error"
	Database   DatabaseConfig   `toml:"database"`
	Vaults     []VaultConfig    `toml:"vaults"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// DatabaseConfig represents configuration for the workspace databases.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite; one <workspace>.db per workspace
}

// VaultConfig represents configuration for a snapshot vault.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"` // S3-compatible stores such as MinIO

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for snapshots.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default), "test" or "none"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(workspace, baseDir string) *Config {
	return &Config{
		Workspace: workspace,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		LogLevel:  "info",
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "workspaces"),
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "scout.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "scout.key"),
		},
	}
}

// ValidWorkspaceName reports whether name can be used as a workspace name.
// Names become file names, so they are restricted to lower case letters,
// digits, '-' and '_'.
func ValidWorkspaceName(name string) bool {
	return workspaceName.MatchString(name)
}

// Validate checks the tagged unions and names in cfg.
func (c *Config) Validate() error {
	if c.Workspace != "" && !ValidWorkspaceName(c.Workspace) {
		return fmt.Errorf("%w: workspace name %q", ErrInvalid, c.Workspace)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	switch c.Database.Type {
	case "memory":
	case "sqlite":
		if c.Database.DataDir == "" {
			return fmt.Errorf("%w: data_dir required for sqlite database", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown database type %q", ErrInvalid, c.Database.Type)
	}

	names := make(map[string]bool, len(c.Vaults))
	for _, v := range c.Vaults {
		if v.Name == "" {
			return fmt.Errorf("%w: vault without a name", ErrInvalid)
		}
		if names[v.Name] {
			return fmt.Errorf("%w: duplicate vault name %q", ErrInvalid, v.Name)
		}
		names[v.Name] = true

		switch v.Type {
		case "memory", "filesystem", "s3":
		default:
			return fmt.Errorf("%w: unknown vault type %q", ErrInvalid, v.Type)
		}
	}

	switch c.Encryption.Type {
	case "", "age", "test", "none":
	default:
		return fmt.Errorf("%w: unknown encryption type %q", ErrInvalid, c.Encryption.Type)
	}
	return nil
}

// Vault returns the vault with the given name, or the first vault when name
// is empty.
func (c *Config) Vault(name string) (VaultConfig, error) {
	if len(c.Vaults) == 0 {
		return VaultConfig{}, fmt.Errorf("no vaults configured")
	}
	if name == "" {
		return c.Vaults[0], nil
	}
	for _, v := range c.Vaults {
		if v.Name == name {
			return v, nil
		}
	}
	return VaultConfig{}, fmt.Errorf("vault %q not configured", name)
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. An existing file is never overwritten.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

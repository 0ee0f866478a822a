package app

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the XDG directories and the log file.
const AppName = "scout"

// Defaults are the paths used when the config file does not override them.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns default paths. Environment variables win over the XDG
// base directories:
//   - SCOUT_CONFIG_PATH: config file (default: $XDG_CONFIG_HOME/scout/scout.toml)
//   - SCOUT_HOME: data directory (default: $XDG_DATA_HOME/scout)
func GetDefaults() Defaults {
	configPath := os.Getenv("SCOUT_CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join(xdg.ConfigHome, AppName, AppName+".toml")
	}

	baseDir := os.Getenv("SCOUT_HOME")
	if baseDir == "" {
		baseDir = filepath.Join(xdg.DataHome, AppName)
	}

	return Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}
}

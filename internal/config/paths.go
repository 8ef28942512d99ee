// Package config loads and saves the panelctl settings file.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appDirName     = "panelctl"
	configFileName = "config.ini"
)

// ConfigDirectory returns the directory holding panelctl's settings.
//
// Locations:
//   - Windows: %APPDATA%\panelctl
//   - Unix: ~/.config/panelctl
func ConfigDirectory() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appDirName)
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Roaming", appDirName)
	}
	return filepath.Join(home, ".config", appDirName)
}

// DefaultConfigPath returns the settings file used when --config is not given.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDirectory(), configFileName)
}

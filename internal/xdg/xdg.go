// Package xdg resolves XDG Base Directory paths for sqlapi.
//
// It falls back to the traditional ~/.config location when XDG_CONFIG_HOME is not
// set and creates the directory with private permissions.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "sqlapi"

// ConfigDir returns the XDG config directory for sqlapi.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/sqlapi when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}

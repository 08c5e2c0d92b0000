// Package paths resolves the configuration and data directories. Each
// follows a precedence chain ending in a platform default.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used under the platform base directories.
const AppName = "provider"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "PROVIDER_CONFIG_DIR"
	EnvDataDir   = "PROVIDER_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// linuxDir returns $<xdgVar>/provider, falling back to ~/<fallback...>/provider.
func linuxDir(xdgVar string, fallback ...string) (string, error) {
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, fallback...), AppName)...), nil
}

// userDir returns os.UserConfigDir()/provider: ~/Library/Application
// Support on macOS, %APPDATA% on Windows.
func userDir() (string, error) {
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/provider (fallback ~/.config/provider)
// macOS:   ~/Library/Application Support/provider
// Windows: %APPDATA%/provider
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return linuxDir("XDG_CONFIG_HOME", ".config")
	}
	return userDir()
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/provider (fallback ~/.local/share/provider)
// macOS and Windows: same as the config directory.
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return linuxDir("XDG_DATA_HOME", ".local", "share")
	}
	return userDir()
}

// ResolveConfigDir returns the configuration directory:
// flag > PROVIDER_CONFIG_DIR > DefaultConfigDir(). Overrides are made
// absolute.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory:
// flag > data_dir from provider.yaml > PROVIDER_DATA_DIR > DefaultDataDir().
// Overrides are made absolute.
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, dir := range []string{flag, configValue, os.Getenv(EnvDataDir)} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	return DefaultDataDir()
}

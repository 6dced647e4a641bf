// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"path/filepath"
)

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// ErrNoHomeDir is returned when the per-user config root needs a home
// directory and none is known.
var ErrNoHomeDir = errors.New("home directory not available")

// Env abstracts the process lookups UserConfigRoot depends on.
type Env struct {
	Getenv  func(string) string
	HomeDir func() (string, error)
}

// UserConfigRoot returns the per-user configuration root for goos:
// %APPDATA% (falling back to %USERPROFILE%\AppData\Roaming) on Windows,
// ~/Library/Application Support on macOS and $XDG_CONFIG_HOME (falling back
// to ~/.config) elsewhere.
func UserConfigRoot(goos string, env Env) (string, error) {
	switch goos {
	case Windows:
		if dir := env.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		if profile := env.Getenv("USERPROFILE"); profile != "" {
			return filepath.Join(profile, "AppData", "Roaming"), nil
		}
		return "", fmt.Errorf("%w: neither APPDATA nor USERPROFILE is set", ErrNoHomeDir)
	case Darwin:
		home, err := homeDir(env)
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if dir := env.Getenv("XDG_CONFIG_HOME"); dir != "" {
			return dir, nil
		}
		home, err := homeDir(env)
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config"), nil
	}
}

func homeDir(env Env) (string, error) {
	home, err := env.HomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoHomeDir, err)
	}
	if home == "" {
		return "", ErrNoHomeDir
	}
	return home, nil
}

package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const dataDirName = "blockchain-api"

// DefaultDataDir returns the per-user data directory of the service. It follows
// XDG_DATA_HOME on unix-like systems and falls back to $HOME/.local/share.
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		configDir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("user data directory not found: %w", err)
		}
		return filepath.Join(configDir, dataDirName), nil
	case "darwin", "dragonfly", "freebsd", "illumos", "linux", "netbsd", "openbsd", "solaris":
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			home := os.Getenv("HOME")
			if home == "" {
				return "", errors.New("could not find data directory: home directory not found")
			}
			dataHome = filepath.Join(home, ".local", "share")
		}
		result := filepath.Join(dataHome, dataDirName)
		if err := os.MkdirAll(result, os.ModePerm); err != nil {
			return "", fmt.Errorf("could not create data directory %s: %w", result, err)
		}
		return result, nil
	default:
		return "", errors.New("user data directory not found")
	}
}

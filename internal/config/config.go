package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	userConfigRelPath     = "~/.config/ocwrap/config.toml"
	projectConfigFileName = ".ocwrap.toml"
)

// UserConfigPath returns the absolute path of the user-scoped configuration
// file.
func UserConfigPath() (string, error) {
	return expandPath(userConfigRelPath)
}

// ProjectConfigPath returns the absolute path of the project-scoped
// configuration file discovered in dir. An empty dir means the current
// working directory.
func ProjectConfigPath(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	path, err := filepath.Abs(filepath.Join(dir, projectConfigFileName))
	if err != nil {
		return "", fmt.Errorf("resolve project config path: %w", err)
	}
	return path, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	pathValue = os.ExpandEnv(pathValue)
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

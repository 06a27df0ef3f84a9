package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

//go:embed sample_config.toml
var sampleConfig string

// InitUserConfig writes the schema defaults to the user-scoped configuration
// location and returns the path written. Unless force is set, an existing
// file is left untouched and an error is returned.
func InitUserConfig(force bool) (string, error) {
	path, err := UserConfigPath()
	if err != nil {
		return "", err
	}
	return path, InitConfigAt(path, force)
}

// InitConfigAt writes the sample configuration to an explicit path. The
// write is guarded by a sibling lock file so concurrent initializers cannot
// clobber each other, and uses exclusive create unless force is set.
func InitConfigAt(path string, force bool) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("config path required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &InitError{Path: path, Err: fmt.Errorf("create config directory %q: %w", dir, err)}
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return &InitError{Path: path, Err: fmt.Errorf("lock config file: %w", err)}
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return &InitError{Path: path, Err: fmt.Errorf("file already exists (use --force to replace it): %w", err)}
		}
		return &InitError{Path: path, Err: fmt.Errorf("create config file: %w", err)}
	}

	if _, err := file.WriteString(sampleConfig); err != nil {
		_ = file.Close()
		return &InitError{Path: path, Err: fmt.Errorf("write sample config: %w", err)}
	}
	if err := file.Close(); err != nil {
		return &InitError{Path: path, Err: fmt.Errorf("close config file: %w", err)}
	}
	return nil
}

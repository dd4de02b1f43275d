package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/quenby/xskel/errors"
	"github.com/quenby/xskel/logger"
)

// UserConfigPath returns the path to the user config file in ~/.xskel/xskel.toml
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".xskel", "xskel.toml")
}

// Init writes the default configuration as TOML. An empty path targets
// the user config file. Refuses to overwrite an existing file unless
// force is set; overwrites rotate a backup first. Returns the path written.
func Init(path string, force bool) (string, error) {
	if path == "" {
		path = UserConfigPath()
		if path == "" {
			return "", errors.New("could not determine home directory")
		}
	}

	if _, err := os.Stat(path); err == nil {
		if !force {
			return "", errors.Newf("config file already exists at %s (use --force to overwrite)", path)
		}
		if err := createBackup(path); err != nil {
			return "", errors.Wrap(err, "failed to create backup")
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return "", errors.Wrap(err, "failed to create config directory")
	}

	data, err := toml.Marshal(Default())
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return "", errors.Wrap(err, "failed to write config")
	}

	return path, nil
}

// Render returns the TOML representation of a configuration.
// `config show` uses it to print the effective merged config.
func Render(cfg *Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal config")
	}
	return string(data), nil
}

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	// Check if file exists before backing up
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate backups: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	// Delete oldest backup if exists
	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		// Deletion failures should not fail the config save
		logger.Warnw("Failed to delete old config backup",
			"path", back3,
			"error", err)
	}

	// Rotate .back2 to .back3
	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	// Rotate .back1 to .back2
	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	// Copy current to .back1
	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

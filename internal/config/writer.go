package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by Write when the file exists and force is false.
var ErrConfigExists = errors.New("config file already exists")

const fileHeader = `# identiq Configuration File
#
# Values can be overridden with IDENTIQ_<SECTION>_<KEY> environment variables,
# e.g. IDENTIQ_SERVER_PORT=9090.

`

// Marshal renders cfg as YAML with the standard header.
func Marshal(cfg *Config) ([]byte, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return append([]byte(fileHeader), body...), nil
}

// Write stores cfg at path, creating parent directories.
func Write(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return ErrConfigExists
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds packaging settings shared by the packager binaries.
type Config struct {
	// BuildDir is the directory containing the pre-built extension files.
	BuildDir string `yaml:"build_dir"`
	// OutputDir is the directory where the package archive is written.
	OutputDir string `yaml:"output_dir"`
}

const (
	// DefaultConfigFilename is the default filename for packaging settings.
	DefaultConfigFilename = "extension-packager-settings.yaml"

	// DefaultBuildDir is the build output directory packaged by default.
	DefaultBuildDir = "build"

	// DefaultOutputDir is where the package archive is placed by default.
	DefaultOutputDir = "."

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Default returns a configuration populated with default settings.
// It is used when no settings file exists, so the packager runs with no setup.
func Default() *Config {
	return &Config{
		BuildDir:  DefaultBuildDir,
		OutputDir: DefaultOutputDir,
	}
}

// Load reads configuration from the provided path and validates essential fields.
// A missing file surfaces os.ErrNotExist through the wrapped error so callers
// can fall back to defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults for empty fields.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	// Set default build directory if not specified.
	if strings.TrimSpace(settings.BuildDir) == "" {
		settings.BuildDir = DefaultBuildDir
	}

	// Set default output directory if not specified.
	if strings.TrimSpace(settings.OutputDir) == "" {
		settings.OutputDir = DefaultOutputDir
	}

	return nil
}

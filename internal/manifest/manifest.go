package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Manifest carries the extension metadata the packager needs.
// All other manifest keys are ignored.
type Manifest struct {
	// Version is the extension version stamped into the package filename.
	Version string `json:"version"`
	// Name is the human-readable extension name used in progress reporting.
	Name string `json:"name"`
}

const (
	// Filename is the manifest filename expected inside the build directory.
	Filename = "manifest.json"

	// DefaultVersion is used when the manifest carries no version field.
	DefaultVersion = "1.0.0"

	// DefaultName is used when the manifest carries no name field.
	DefaultName = "ChatGPT Extension"
)

// ErrNotFound is returned when the manifest file does not exist.
var ErrNotFound = errors.New("manifest not found")

// Load reads the manifest at the provided path and applies defaults for
// missing fields. A missing file yields ErrNotFound; an unreadable or
// malformed file surfaces the underlying cause.
func Load(path string) (*Manifest, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if m.Version == "" {
		m.Version = DefaultVersion
	}

	if m.Name == "" {
		m.Name = DefaultName
	}

	return &m, nil
}

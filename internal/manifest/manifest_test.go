package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeManifest stores the provided JSON body in a temp directory and returns its path.
func writeManifest(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), Filename)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

// TestLoad verifies field extraction and that unrecognized keys are ignored.
func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, `{
		"manifest_version": 3,
		"name": "Example Extension",
		"version": "2.1.0",
		"permissions": ["storage"]
	}`)

	m, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "2.1.0", m.Version)
	require.Equal(t, "Example Extension", m.Name)
}

// TestLoadDefaults ensures missing version and name fields fall back to defaults.
func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	m, err := Load(writeManifest(t, `{"manifest_version": 3}`))
	require.NoError(t, err)
	require.Equal(t, DefaultVersion, m.Version)
	require.Equal(t, DefaultName, m.Name)
}

// TestLoadNotFound verifies the sentinel error for a missing manifest file.
func TestLoadNotFound(t *testing.T) {
	t.Parallel()

	m, err := Load(filepath.Join(t.TempDir(), Filename))
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, m)
}

// TestLoadMalformed ensures broken JSON surfaces a decode error, not a panic or defaults.
func TestLoadMalformed(t *testing.T) {
	t.Parallel()

	m, err := Load(writeManifest(t, `{"version": "2.1.0`))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
	require.Nil(t, m)
}

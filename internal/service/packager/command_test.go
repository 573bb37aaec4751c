package packager

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/chatgpt-extension-packager/internal/archive"
	"github.com/oshokin/chatgpt-extension-packager/internal/config"
	"github.com/oshokin/chatgpt-extension-packager/internal/manifest"
)

// writeBuildFile creates a file with parent directories below the current directory.
func writeBuildFile(t *testing.T, name, contents string) {
	t.Helper()

	path := filepath.FromSlash(name)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}

// TestRun_PackagesEssentialFiles packages a typical build tree and checks that
// exactly the essential files and assets end up in the archive.
func TestRun_PackagesEssentialFiles(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "build/manifest.json", `{"version": "2.1.0", "name": "ChatGPT Helper"}`)
	writeBuildFile(t, "build/chatgpt-controller.js", "// controller")
	writeBuildFile(t, "build/service-worker.js", "// worker")
	writeBuildFile(t, "build/popup.html", "<html></html>")
	writeBuildFile(t, "build/README.md", "docs")
	writeBuildFile(t, "build/assets/icon.png", "png-bytes")

	require.NoError(t, Run(context.Background(), &Options{}))

	packageName := PackageFilename("2.1.0")
	require.FileExists(t, packageName)

	entries, err := archive.List(packageName)
	require.NoError(t, err)
	require.Equal(t, []string{
		"assets/icon.png",
		"chatgpt-controller.js",
		"manifest.json",
		"popup.html",
		"service-worker.js",
	}, entries)

	// The run marker never outlives the run.
	require.NoFileExists(t, MarkerFilename)
}

// TestRun_MissingBuildDirectory verifies a missing build directory fails the
// run before anything is written to disk.
func TestRun_MissingBuildDirectory(t *testing.T) {
	t.Chdir(t.TempDir())

	err := Run(context.Background(), &Options{})
	require.ErrorIs(t, err, errBuildDirectoryNotFound)

	dirEntries, err := os.ReadDir(".")
	require.NoError(t, err)
	require.Empty(t, dirEntries)
}

// TestRun_MissingManifest verifies a build tree without a manifest fails
// before any archive is created.
func TestRun_MissingManifest(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "build/chatgpt-controller.js", "// controller")

	err := Run(context.Background(), &Options{})
	require.ErrorIs(t, err, manifest.ErrNotFound)

	archives, err := filepath.Glob(PackagePrefix + "-v*.zip")
	require.NoError(t, err)
	require.Empty(t, archives)

	require.NoFileExists(t, MarkerFilename)
}

// TestRun_MalformedManifest verifies unparseable manifest contents surface the
// decode failure and leave no archive behind.
func TestRun_MalformedManifest(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "build/manifest.json", "{not json")

	err := Run(context.Background(), &Options{})
	require.Error(t, err)
	require.NotErrorIs(t, err, manifest.ErrNotFound)
	require.ErrorContains(t, err, "decode manifest")

	archives, err := filepath.Glob(PackagePrefix + "-v*.zip")
	require.NoError(t, err)
	require.Empty(t, archives)
}

// TestRun_DefaultsWhenManifestIsEmpty verifies missing manifest fields fall
// back to the default version and name.
func TestRun_DefaultsWhenManifestIsEmpty(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "build/manifest.json", "{}")

	require.NoError(t, Run(context.Background(), &Options{}))
	require.FileExists(t, PackageFilename(manifest.DefaultVersion))
}

// TestRun_ReplacesExistingArchive verifies a prior file at the target name is
// deleted before the new archive is written.
func TestRun_ReplacesExistingArchive(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "build/manifest.json", `{"version": "2.1.0"}`)
	writeBuildFile(t, "build/popup.html", "<html></html>")

	// Not even a valid ZIP, a fresh run must not be confused by it.
	packageName := PackageFilename("2.1.0")
	require.NoError(t, os.WriteFile(packageName, []byte("stale bytes"), 0o600))

	require.NoError(t, Run(context.Background(), &Options{}))

	entries, err := archive.List(packageName)
	require.NoError(t, err)
	require.Equal(t, []string{"manifest.json", "popup.html"}, entries)
}

// TestRun_NoStaleEntries verifies files removed from the build tree between
// runs never survive into the next archive.
func TestRun_NoStaleEntries(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "build/manifest.json", `{"version": "2.1.0"}`)
	writeBuildFile(t, "build/assets/old.png", "old")

	require.NoError(t, Run(context.Background(), &Options{}))

	require.NoError(t, os.Remove(filepath.FromSlash("build/assets/old.png")))
	writeBuildFile(t, "build/assets/new.png", "new")

	require.NoError(t, Run(context.Background(), &Options{}))

	entries, err := archive.List(PackageFilename("2.1.0"))
	require.NoError(t, err)
	require.Equal(t, []string{"assets/new.png", "manifest.json"}, entries)
}

// TestRun_IdempotentSelection verifies two runs over identical inputs produce
// identical entry sets.
func TestRun_IdempotentSelection(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "build/manifest.json", `{"version": "3.0.0"}`)
	writeBuildFile(t, "build/service-worker.js", "// worker")
	writeBuildFile(t, "build/assets/icon.png", "png-bytes")
	writeBuildFile(t, "build/skipped.txt", "skipped")

	require.NoError(t, Run(context.Background(), &Options{}))

	firstEntries, err := archive.List(PackageFilename("3.0.0"))
	require.NoError(t, err)

	require.NoError(t, Run(context.Background(), &Options{}))

	secondEntries, err := archive.List(PackageFilename("3.0.0"))
	require.NoError(t, err)
	require.Equal(t, firstEntries, secondEntries)
	require.NotContains(t, secondEntries, "skipped.txt")
}

// TestRun_PreservesRelativePaths verifies nested selected files keep their
// paths below the build root while nested extras stay excluded.
func TestRun_PreservesRelativePaths(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "build/manifest.json", "{}")
	writeBuildFile(t, "build/sub/assets/logo.svg", "<svg/>")
	writeBuildFile(t, "build/nested/deep/popup.html", "<html></html>")
	writeBuildFile(t, "build/nested/deep/notes.txt", "notes")

	require.NoError(t, Run(context.Background(), &Options{}))

	entries, err := archive.List(PackageFilename(manifest.DefaultVersion))
	require.NoError(t, err)
	require.Equal(t, []string{
		"manifest.json",
		"nested/deep/popup.html",
		"sub/assets/logo.svg",
	}, entries)
}

// TestRun_MissingOutputDirectory verifies archive creation failures surface as
// write errors and leave no marker behind.
func TestRun_MissingOutputDirectory(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "build/manifest.json", "{}")

	err := Run(context.Background(), &Options{OutputDir: "no-such-dir"})
	require.Error(t, err)
	require.ErrorContains(t, err, "write package")

	require.NoFileExists(t, MarkerFilename)
}

// TestRun_ArchiveWriteFailure verifies a build file that cannot be read aborts
// the run and removes the partial archive.
func TestRun_ArchiveWriteFailure(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "build/manifest.json", `{"version": "2.1.0"}`)

	// A dangling symlink is selected by name but fails to open.
	require.NoError(t, os.Symlink("missing-target", filepath.FromSlash("build/popup.html")))

	err := Run(context.Background(), &Options{})
	require.Error(t, err)
	require.ErrorContains(t, err, "write package")

	// No truncated archive survives the failure.
	require.NoFileExists(t, PackageFilename("2.1.0"))
	require.NoFileExists(t, MarkerFilename)
}

// TestRun_SizeLimitExceeded verifies an oversized package fails the run while
// the archive itself stays on disk.
func TestRun_SizeLimitExceeded(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "build/manifest.json", `{"version": "2.1.0"}`)
	writeBuildFile(t, "build/popup.html", "<html></html>")

	err := Run(context.Background(), &Options{SizeLimit: 1})
	require.ErrorIs(t, err, errSizeLimitExceeded)

	// The oversized archive is left in place, clearly labeled by the failure.
	require.FileExists(t, PackageFilename("2.1.0"))
}

// TestRun_RefusesParallelRun verifies a fresh marker from another run blocks
// packaging and is left untouched.
func TestRun_RefusesParallelRun(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "build/manifest.json", "{}")
	require.NoError(t, os.WriteFile(MarkerFilename, nil, 0o600))

	err := Run(context.Background(), &Options{})
	require.ErrorIs(t, err, errPackagerAlreadyRunning)

	// The other run still owns the marker and no archive was produced.
	require.FileExists(t, MarkerFilename)

	archives, err := filepath.Glob(PackagePrefix + "-v*.zip")
	require.NoError(t, err)
	require.Empty(t, archives)
}

// TestRun_RecoversStaleMarker verifies an expired marker without a live owner
// does not block packaging.
func TestRun_RecoversStaleMarker(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "build/manifest.json", "{}")
	require.NoError(t, os.WriteFile(MarkerFilename, nil, 0o600))

	expired := time.Now().Add(-2 * markerLifetime)
	require.NoError(t, os.Chtimes(MarkerFilename, expired, expired))

	require.NoError(t, Run(context.Background(), &Options{}))
	require.FileExists(t, PackageFilename(manifest.DefaultVersion))
	require.NoFileExists(t, MarkerFilename)
}

// TestRun_BuildDirOverride verifies command line overrides take precedence
// over default settings.
func TestRun_BuildDirOverride(t *testing.T) {
	t.Chdir(t.TempDir())

	writeBuildFile(t, "dist/manifest.json", `{"version": "1.2.3"}`)
	writeBuildFile(t, "dist/popup.html", "<html></html>")

	require.NoError(t, Run(context.Background(), &Options{BuildDir: "dist"}))
	require.FileExists(t, PackageFilename("1.2.3"))
}

// TestRun_SettingsFile verifies directories from a settings file are honored.
func TestRun_SettingsFile(t *testing.T) {
	t.Chdir(t.TempDir())

	settingsPath := "packager-settings.yaml"
	require.NoError(t, config.Save(settingsPath, &config.Config{BuildDir: "dist"}))

	writeBuildFile(t, "dist/manifest.json", `{"version": "4.5.6"}`)
	writeBuildFile(t, "dist/service-worker.js", "// worker")

	require.NoError(t, Run(context.Background(), &Options{ConfigPath: settingsPath}))
	require.FileExists(t, PackageFilename("4.5.6"))
}

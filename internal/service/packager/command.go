package packager

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/chatgpt-extension-packager/internal/archive"
	"github.com/oshokin/chatgpt-extension-packager/internal/config"
	"github.com/oshokin/chatgpt-extension-packager/internal/logger"
	"github.com/oshokin/chatgpt-extension-packager/internal/manifest"
	"github.com/oshokin/chatgpt-extension-packager/internal/version"
)

var (
	errPackagerAlreadyRunning = errors.New("the packager is already running")
	errBuildDirectoryNotFound = errors.New("build directory not found")
	errSizeLimitExceeded      = errors.New("package exceeds the Chrome Web Store size limit")
)

const (
	// PackagePrefix is the fixed basename prefix of produced archives.
	PackagePrefix = "chatgpt-extension"

	// DefaultSizeLimit is the Chrome Web Store upload limit in bytes.
	DefaultSizeLimit int64 = 100 * 1024 * 1024

	// entryListLimit caps how many archive entries the summary shows.
	entryListLimit = 20

	bytesPerMegabyte = 1024 * 1024
)

// Options contains inputs for the packager entry point.
type Options struct {
	// ConfigPath is an optional path to packaging settings YAML.
	ConfigPath string
	// BuildDir overrides the build directory from settings when non-empty.
	BuildDir string
	// OutputDir overrides the output directory from settings when non-empty.
	OutputDir string
	// SizeLimit overrides the store size limit in bytes, zero keeps the default.
	SizeLimit int64
}

// packager assembles the store submission archive from the build directory.
// It is unexported—callers should use Run, which encapsulates setup and validation.
type packager struct {
	// cfg holds the resolved build and output directories.
	cfg *config.Config
	// selection decides which build files belong in the package.
	selection *Selection
	// man is the extension manifest loaded from the build directory.
	man *manifest.Manifest
	// sizeLimit is the maximum acceptable archive size in bytes.
	sizeLimit int64
	// packagePath is the target archive location.
	packagePath string
	// fileCount counts files added to the archive.
	fileCount int
}

// PackageFilename returns the archive filename for an extension version.
func PackageFilename(extensionVersion string) string {
	return fmt.Sprintf("%s-v%s.zip", PackagePrefix, extensionVersion)
}

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "extension-packager")

	logger.Info(ctx, "Creating ChatGPT extension package")

	// Record who is packaging and where, detection problems are not fatal.
	if actor, err := DetectActor(); err == nil {
		logger.InfoKV(ctx, "Packaging station", "hostname", actor.Hostname, "username", actor.Username)
	} else {
		logger.Debugf(ctx, "Unable to detect packaging station: %v", err)
	}

	cfg, err := resolveConfig(ctx, opts)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	pkg, err := newPackager(ctx, cfg, opts.SizeLimit)
	if err != nil {
		return fmt.Errorf("initialize packager: %w", err)
	}

	defer pkg.cleanup(ctx)

	if err = pkg.Run(ctx); err != nil {
		return fmt.Errorf("packager failed: %w", err)
	}

	logger.Info(ctx, "Packager completed successfully")

	return nil
}

// resolveConfig loads settings from disk and applies command line overrides.
// A missing settings file is not an error, defaults are used instead.
func resolveConfig(ctx context.Context, opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		logger.Debug(ctx, "Settings file not found, using defaults")

		cfg = config.Default()
	}

	if opts.BuildDir != "" {
		cfg.BuildDir = opts.BuildDir
	}

	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}

	return cfg, nil
}

// newPackager verifies preconditions and writes a marker to avoid concurrent runs.
// The marker is created last so failed preconditions leave the filesystem untouched.
func newPackager(ctx context.Context, cfg *config.Config, sizeLimit int64) (*packager, error) {
	buildDirInfo, err := os.Stat(cfg.BuildDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", cfg.BuildDir, errBuildDirectoryNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("stat build directory: %w", err)
	}

	if !buildDirInfo.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", cfg.BuildDir, errBuildDirectoryNotFound)
	}

	if IsPackagerRunningNow(ctx) {
		return nil, errPackagerAlreadyRunning
	}

	runMarker, err := os.Create(MarkerFilename)
	if err != nil {
		return nil, fmt.Errorf("create run marker: %w", err)
	}

	if err = runMarker.Close(); err != nil {
		return nil, fmt.Errorf("close run marker: %w", err)
	}

	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}

	return &packager{
		cfg:       cfg,
		selection: DefaultSelection(),
		sizeLimit: sizeLimit,
	}, nil
}

// Run produces and verifies the package archive:
// 1) Read version and name from the manifest.
// 2) Remove a stale archive of the same name.
// 3) Walk the build tree and pack the selected files.
// 4) Verify size, checksum and contents of the result.
func (p *packager) Run(ctx context.Context) error {
	if err := p.loadManifest(ctx); err != nil {
		return err
	}

	if err := p.prepareTarget(ctx); err != nil {
		return err
	}

	if err := p.buildArchive(ctx); err != nil {
		return err
	}

	if err := p.verifyArchive(ctx); err != nil {
		return err
	}

	p.printNextSteps(ctx)

	return nil
}

// loadManifest reads extension metadata from the build directory.
func (p *packager) loadManifest(ctx context.Context) error {
	man, err := manifest.Load(filepath.Join(p.cfg.BuildDir, manifest.Filename))
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			return fmt.Errorf("%s in %s: %w", manifest.Filename, p.cfg.BuildDir, err)
		}

		return fmt.Errorf("load manifest: %w", err)
	}

	p.man = man

	logger.InfoKV(ctx, "Building extension package", "name", man.Name, "version", man.Version)

	return nil
}

// prepareTarget computes the archive path and removes a stale archive if present.
func (p *packager) prepareTarget(ctx context.Context) error {
	p.packagePath = filepath.Join(p.cfg.OutputDir, PackageFilename(p.man.Version))

	if _, err := os.Stat(p.packagePath); err == nil {
		if err = os.Remove(p.packagePath); err != nil {
			return fmt.Errorf("remove stale package: %w", err)
		}

		logger.InfoKV(ctx, "Removed existing package", "path", p.packagePath)
	}

	return nil
}

// buildArchive walks the build tree and writes the selected files into the package.
// A partially written archive is discarded on failure.
func (p *packager) buildArchive(ctx context.Context) error {
	builder, err := archive.NewBuilder(p.packagePath)
	if err != nil {
		return fmt.Errorf("write package: %w", err)
	}

	// Stamp the packager version into the archive so a store submission can
	// be traced back to the tool build that produced it.
	if err = builder.SetComment(version.Stamp()); err != nil {
		builder.Discard()

		return fmt.Errorf("write package: %w", err)
	}

	if err = p.addBuildFiles(ctx, builder); err != nil {
		builder.Discard()

		return fmt.Errorf("write package: %w", err)
	}

	if err = builder.Close(); err != nil {
		_ = os.Remove(builder.Path())

		return fmt.Errorf("write package: %w", err)
	}

	logger.InfoKV(ctx, "Added files to package", "count", p.fileCount)

	return nil
}

// addBuildFiles adds every selected file under the build directory to the archive,
// storing each under its slash-separated path relative to the build root.
func (p *packager) addBuildFiles(ctx context.Context, builder *archive.Builder) error {
	return filepath.WalkDir(p.cfg.BuildDir, func(currentPath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if entry.IsDir() {
			return nil
		}

		relativePath, err := filepath.Rel(p.cfg.BuildDir, currentPath)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", currentPath, err)
		}

		entryName := filepath.ToSlash(relativePath)

		if !p.selection.Includes(entryName) {
			logger.InfoKV(ctx, "Excluded file", "path", entryName)

			return nil
		}

		if err = builder.Add(currentPath, entryName); err != nil {
			return err
		}

		p.fileCount++

		logger.InfoKV(ctx, "Added file", "path", entryName)

		return nil
	})
}

// verifyArchive confirms the archive exists, checks it against the store size
// limit and reports its checksum and contents.
func (p *packager) verifyArchive(ctx context.Context) error {
	packageSize, err := archive.Size(p.packagePath)
	if err != nil {
		return fmt.Errorf("verify package: %w", err)
	}

	sizeMB := float64(packageSize) / bytesPerMegabyte

	logger.InfoKV(ctx, "Package created",
		"path", p.packagePath,
		"size_mb", fmt.Sprintf("%.2f", sizeMB))

	if packageSize > p.sizeLimit {
		logger.WarnKV(ctx, "Package exceeds the Chrome Web Store size limit",
			"size_mb", fmt.Sprintf("%.2f", sizeMB),
			"limit_mb", fmt.Sprintf("%.2f", float64(p.sizeLimit)/bytesPerMegabyte))

		return fmt.Errorf("%.2f MB: %w", sizeMB, errSizeLimitExceeded)
	}

	logger.Info(ctx, "Package size is within Chrome Web Store limits")

	checksum, err := archive.Checksum(p.packagePath)
	if err != nil {
		return fmt.Errorf("checksum package: %w", err)
	}

	logger.InfoKV(ctx, "Package checksum", "sha512", base64.StdEncoding.EncodeToString(checksum))

	p.listContents(ctx)

	return nil
}

// listContents reports archive entries in sorted order, truncated to a fixed
// limit. Listing problems are reported but do not fail a completed run.
func (p *packager) listContents(ctx context.Context) {
	entryNames, err := archive.List(p.packagePath)
	if err != nil {
		logger.ErrorKV(ctx, "Unable to list package contents", "error", err)

		return
	}

	shown := entryNames
	if len(shown) > entryListLimit {
		shown = shown[:entryListLimit]
	}

	var builder strings.Builder

	builder.WriteString("Package contents:")

	for _, name := range shown {
		builder.WriteString("\n")
		builder.WriteString(name)
	}

	if remainder := len(entryNames) - len(shown); remainder > 0 {
		builder.WriteString(fmt.Sprintf("\n... and %d more files", remainder))
	}

	logger.Info(ctx, builder.String())
}

// printNextSteps logs human-readable guidance for submitting the created package.
func (p *packager) printNextSteps(ctx context.Context) {
	var builder strings.Builder

	builder.WriteString("Extension package is ready for Chrome Web Store submission.")
	builder.WriteString("\nNext steps:")
	builder.WriteString("\n1. Test the extension by loading the ")
	builder.WriteString(p.cfg.BuildDir)
	builder.WriteString(" folder in Chrome.")
	builder.WriteString("\n2. Submit ")
	builder.WriteString(filepath.Base(p.packagePath))
	builder.WriteString(" to the Chrome Web Store.")

	logger.Info(ctx, builder.String())
}

// cleanup removes the run marker.
func (p *packager) cleanup(ctx context.Context) {
	if _, err := os.Stat(MarkerFilename); err == nil {
		_ = os.Remove(MarkerFilename)
	}

	logger.Info(ctx, "The packager has been stopped")
}

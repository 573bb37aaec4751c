// Package version exposes build metadata for the packager.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds.
// Helper functions Short and Full render the version string for CLI output
// and logs; Stamp renders the provenance line recorded in produced archives.
//
// Note that this is the version of the tool itself; the version stamped into
// the package filename always comes from the extension manifest.
package version

package version

import "fmt"

var (
	// Version is the semantic version of the packager build. It can be overridden via ldflags.
	Version = "1.0.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}

// Stamp returns the provenance line recorded in produced archives.
// It deliberately omits the build time so identical inputs keep producing
// identical archives.
func Stamp() string {
	return fmt.Sprintf("extension-packager %s (commit %s)", Version, Commit)
}

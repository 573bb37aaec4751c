package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures Short and Full return non-empty consistent information.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Contains(t, Full(), Commit)
}

// TestStamp ensures the archive provenance line carries the version but not the
// build time, keeping repeated runs byte-identical.
func TestStamp(t *testing.T) {
	t.Parallel()

	stamp := Stamp()
	require.Contains(t, stamp, Short())
	require.Contains(t, stamp, Commit)
	require.NotContains(t, stamp, BuildTime)
}

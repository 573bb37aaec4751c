package packager

import (
	"path"
	"strings"

	"github.com/oshokin/chatgpt-extension-packager/internal/manifest"
)

// Selection is the rule deciding which build files belong in the store
// package: an exact-filename allow-list plus a path rule that keeps
// everything stored under an assets directory.
type Selection struct {
	// Essential is the set of filenames included wherever they appear in the build tree.
	Essential map[string]struct{}
	// AssetsSegment marks asset paths to always include. It is matched as a
	// plain substring of the slash-separated relative path, so nested and
	// suffixed directories (sub/assets/, unrelated_assets/) match as well.
	AssetsSegment string
}

// DefaultSelection returns the selection rule for Chrome Web Store
// submissions: the manifest, the content controller, the service worker,
// the popup page, and any file under an assets path.
func DefaultSelection() *Selection {
	return &Selection{
		Essential: sliceToSet([]string{
			manifest.Filename,
			"chatgpt-controller.js",
			"service-worker.js",
			"popup.html",
		}),
		AssetsSegment: "assets/",
	}
}

// Includes reports whether the file at relPath belongs in the package.
// relPath must be slash-separated and relative to the build root.
// Matching is case-sensitive, mirroring how the store package has always
// been assembled.
func (s *Selection) Includes(relPath string) bool {
	if _, ok := s.Essential[path.Base(relPath)]; ok {
		return true
	}

	return s.AssetsSegment != "" && strings.Contains(relPath, s.AssetsSegment)
}

// sliceToSet converts a slice to a set for quick lookups.
func sliceToSet[T comparable](elements []T) map[T]struct{} {
	result := make(map[T]struct{}, len(elements))
	for _, value := range elements {
		result[value] = struct{}{}
	}

	return result
}

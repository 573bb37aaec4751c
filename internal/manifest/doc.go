// Package manifest reads the extension manifest.json from the build directory.
//
// Only the version and name fields are consumed; the version names the
// package archive and the name appears in progress output. Missing fields
// fall back to defaults so half-filled manifests still package cleanly.
package manifest

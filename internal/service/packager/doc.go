// Package packager builds the Chrome Web Store submission archive.
//
// It reads the extension manifest from the build directory, selects the
// essential files plus everything under assets paths, writes them into a
// deflate-compressed ZIP named after the manifest version, and verifies
// the result against the store size limit before reporting the package
// contents and submission steps.
//
// A marker file in the working directory prevents two packaging runs from
// racing over the same archive. Stale markers left by crashed runs are
// detected by age and by probing for a live packager process.
package packager

// Package config defines packaging settings used by the binaries and provides
// helpers to load, validate and save them in YAML format.
//
// The Config type holds the build directory to package and the output
// directory for the archive. Both have defaults, so a settings file is
// optional: the packager runs out of the box with no arguments.
package config

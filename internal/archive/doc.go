// Package archive implements the ZIP layer for package artifacts.
//
// Builder writes deflate-compressed entries keyed by POSIX-style relative
// paths and removes the partial file when a build is discarded. The read
// side (List, Size, Checksum) opens the finished archive in its own scope,
// so writer and reader handles never overlap.
package archive

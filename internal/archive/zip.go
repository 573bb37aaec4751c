package archive

import (
	"archive/zip"
	"crypto"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	// Ensure SHA512 is available for checksum calculation.
	_ "crypto/sha512"
)

// DefaultChecksumFunction is used to fingerprint produced archives.
const DefaultChecksumFunction crypto.Hash = crypto.SHA512

var errHashUnavailable = errors.New("hash function unavailable")

// Builder writes files into a ZIP archive using deflate compression.
// Entry names are stored exactly as provided, so callers pass POSIX-style
// relative paths.
type Builder struct {
	// path is the filesystem location of the archive being written.
	path string
	// file is the underlying archive file handle.
	file *os.File
	// zw is the ZIP writer layered on top of the file.
	zw *zip.Writer
}

// NewBuilder creates the archive file at the provided path, truncating any
// previous content, and prepares a ZIP writer on top of it.
func NewBuilder(path string) (*Builder, error) {
	path = filepath.Clean(path)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	return &Builder{
		path: path,
		file: file,
		zw:   zip.NewWriter(file),
	}, nil
}

// SetComment records a provenance note in the archive's central directory.
// It must be called before Close.
func (b *Builder) SetComment(comment string) error {
	if err := b.zw.SetComment(comment); err != nil {
		return fmt.Errorf("set archive comment: %w", err)
	}

	return nil
}

// Add compresses the file at sourcePath into the archive under entryName.
// File mode and modification time are carried over from the source file.
func (b *Builder) Add(sourcePath, entryName string) error {
	source, err := os.Open(filepath.Clean(sourcePath))
	if err != nil {
		return fmt.Errorf("open %s: %w", sourcePath, err)
	}

	defer func() {
		_ = source.Close()
	}()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", sourcePath, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("describe %s: %w", sourcePath, err)
	}

	header.Name = entryName
	header.Method = zip.Deflate

	writer, err := b.zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", entryName, err)
	}

	if _, err = io.Copy(writer, source); err != nil {
		return fmt.Errorf("write entry %s: %w", entryName, err)
	}

	return nil
}

// Close flushes the ZIP central directory and releases the file handle.
// The archive is only complete after Close returns nil.
func (b *Builder) Close() error {
	if err := b.zw.Close(); err != nil {
		_ = b.file.Close()

		return fmt.Errorf("finalize archive: %w", err)
	}

	if err := b.file.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	return nil
}

// Discard abandons the build: the handles are closed and the partially
// written file is removed, best effort. Used on write failures so no
// truncated archive survives.
func (b *Builder) Discard() {
	_ = b.zw.Close()
	_ = b.file.Close()
	_ = os.Remove(b.path)
}

// Path returns the filesystem location of the archive being written.
func (b *Builder) Path() string {
	return b.path
}

// List opens the archive at path and returns its entry names in sorted order.
// The reader is closed before returning so the file handle never outlives the call.
func List(path string) ([]string, error) {
	reader, err := zip.OpenReader(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = reader.Close()
	}()

	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}

	sort.Strings(names)

	return names, nil
}

// Size returns the archive size in bytes.
func Size(path string) (int64, error) {
	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("stat archive: %w", err)
	}

	return info.Size(), nil
}

// Checksum returns checksum bytes for the archive using DefaultChecksumFunction.
func Checksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

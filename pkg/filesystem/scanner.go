package filesystem

import (
	"os"
	"time"
)

// FileScanner is an iterator over the entries of a directory tree.
type FileScanner interface {
	// Next advances to the next entry and returns its info.
	// Returns (FileInfo{}, false) when the walk is done or the root failed.
	Next() (FileInfo, bool)

	// Err returns the error that stopped the walk, if any.
	// Only a failure on the root itself stops a walk.
	Err() error

	// Skipped returns errors for entries below the root that could not be read.
	// Those entries are left out of the walk.
	Skipped() []error
}

// FileInfo contains metadata about one walked entry.
type FileInfo struct {
	// Path is the full path usable with the FileSystem that produced it
	Path string

	// RelativePath is the path relative to the scan root
	RelativePath string

	// Size is the file size in bytes
	Size int64

	// ModTime is the modification time
	ModTime time.Time

	// Mode carries the type bits (directory, symlink, device...)
	Mode os.FileMode
}

// IsDir reports whether the entry is a directory.
func (fi FileInfo) IsDir() bool {
	return fi.Mode.IsDir()
}

// IsRegular reports whether the entry is a plain file.
func (fi FileInfo) IsRegular() bool {
	return fi.Mode.IsRegular()
}

// Package filesystem provides an abstraction layer for filesystem operations
// so the duplicate finder can run against local disks, SFTP servers and an
// in-memory filesystem in tests.
package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kr/fs"
)

// File is a read-only handle on a file's content.
type File interface {
	io.Reader
	io.Closer
	Stat() (os.FileInfo, error)
}

// FileSystem is an interface that abstracts filesystem operations.
// Every mutation the duplicate finder performs goes through Remove, Link and Rename.
type FileSystem interface {
	// Scan returns an iterator over every entry below root, in lexical walk order.
	Scan(root string) FileScanner

	Open(path string) (File, error)
	Stat(path string) (os.FileInfo, error)
	Lstat(path string) (os.FileInfo, error)
	Remove(path string) error
	// Link creates newname as a hard link to oldname.
	Link(oldname, newname string) error
	// Rename replaces newpath with oldpath, overwriting newpath if it exists.
	Rename(oldpath, newpath string) error
	// Join joins path elements with the filesystem's separator.
	Join(elem ...string) string
}

// SameFileChecker is implemented by filesystems that can tell whether two
// paths already refer to the same underlying file.
type SameFileChecker interface {
	SameFile(path1, path2 string) (bool, error)
}

// Canonicalizer is implemented by filesystems that can resolve a path to
// its single absolute form, with symlinks resolved. Two roots naming the
// same directory canonicalize to the same string.
type Canonicalizer interface {
	Canonical(path string) (string, error)
}

// RealFileSystem implements FileSystem using the os package.
type RealFileSystem struct{}

// NewRealFileSystem creates a new RealFileSystem instance.
func NewRealFileSystem() *RealFileSystem {
	return &RealFileSystem{}
}

// Canonical returns the absolute, symlink-free form of path.
func (rfs *RealFileSystem) Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	return resolved, nil
}

// Join joins path elements using the OS separator.
func (rfs *RealFileSystem) Join(elem ...string) string {
	return filepath.Join(elem...)
}

// Link creates newname as a hard link to oldname.
func (rfs *RealFileSystem) Link(oldname, newname string) error {
	err := os.Link(oldname, newname)
	if err != nil {
		return fmt.Errorf("failed to link %s to %s: %w", newname, oldname, err)
	}

	return nil
}

// Lstat returns file information without following symlinks.
func (rfs *RealFileSystem) Lstat(path string) (os.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to lstat %s: %w", path, err)
	}

	return info, nil
}

// Open opens a file for reading.
func (rfs *RealFileSystem) Open(path string) (File, error) {
	file, err := os.Open(path) // #nosec G304 - path comes from the scan
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return file, nil
}

// Remove removes a file.
func (rfs *RealFileSystem) Remove(path string) error {
	err := os.Remove(path)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}

// Rename atomically replaces newpath with oldpath.
func (rfs *RealFileSystem) Rename(oldpath, newpath string) error {
	err := os.Rename(oldpath, newpath)
	if err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", oldpath, newpath, err)
	}

	return nil
}

// SameFile reports whether both paths resolve to the same inode.
func (rfs *RealFileSystem) SameFile(path1, path2 string) (bool, error) {
	info1, err := os.Stat(path1)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path1, err)
	}

	info2, err := os.Stat(path2)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path2, err)
	}

	return os.SameFile(info1, info2), nil
}

// Scan returns an iterator over all entries in a directory tree.
func (rfs *RealFileSystem) Scan(root string) FileScanner {
	return newWalkScanner(fs.Walk(root), root, filepath.Rel, nil)
}

// Stat returns file information.
func (rfs *RealFileSystem) Stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return info, nil
}

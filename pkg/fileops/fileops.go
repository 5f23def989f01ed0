// Package fileops reads file content through a filesystem.FileSystem to
// fingerprint and compare files.
package fileops

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/time/rate"

	"github.com/joe/dupes/pkg/filesystem"
)

// Exported constants.
const (
	// BufferSize is the read size used for hashing and comparing (64KB)
	BufferSize = 64 * 1024
)

// FileOps provides content operations with dependency injection for filesystem access.
// This allows for testing without actual filesystem I/O.
type FileOps struct {
	FS filesystem.FileSystem

	// limiter throttles content reads when set; shared by every concurrent reader.
	limiter *rate.Limiter
}

// NewFileOps creates a new FileOps instance with the given filesystem.
func NewFileOps(fs filesystem.FileSystem) *FileOps {
	return &FileOps{FS: fs}
}

// NewRealFileOps creates a new FileOps instance using the real filesystem.
func NewRealFileOps() *FileOps {
	return &FileOps{FS: filesystem.NewRealFileSystem()}
}

// WithReadLimit caps the combined read rate of hashing and comparing
// at bytesPerSecond. Zero or less removes the cap.
func (fo *FileOps) WithReadLimit(bytesPerSecond int64) *FileOps {
	if bytesPerSecond <= 0 {
		fo.limiter = nil
		return fo
	}

	fo.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), BufferSize)

	return fo
}

// CompareFilesBytes performs a byte-by-byte comparison of two files.
// Returns true if files are identical, false if they differ.
func (fo *FileOps) CompareFilesBytes(ctx context.Context, path1, path2 string) (bool, error) {
	file1, err := fo.FS.Open(path1)
	if err != nil {
		return false, fmt.Errorf("failed to open file %s: %w", path1, err)
	}

	defer func() {
		_ = file1.Close()
	}()

	file2, err := fo.FS.Open(path2)
	if err != nil {
		return false, fmt.Errorf("failed to open file %s: %w", path2, err)
	}

	defer func() {
		_ = file2.Close()
	}()

	info1, err := file1.Stat()
	if err != nil {
		return false, fmt.Errorf("failed to stat file %s: %w", path1, err)
	}

	info2, err := file2.Stat()
	if err != nil {
		return false, fmt.Errorf("failed to stat file %s: %w", path2, err)
	}

	// Quick size check
	if info1.Size() != info2.Size() {
		return false, nil
	}

	identical, err := compareFileContents(fo.reader(ctx, file1), fo.reader(ctx, file2))
	if err != nil {
		return false, fmt.Errorf("failed to compare %s and %s: %w", path1, path2, err)
	}

	return identical, nil
}

// CheckReadable opens and closes filePath without reading it, for callers
// that group files by metadata but must not act on files they cannot read.
func (fo *FileOps) CheckReadable(filePath string) error {
	file, err := fo.FS.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}

	err = file.Close()
	if err != nil {
		return fmt.Errorf("failed to close file %s: %w", filePath, err)
	}

	return nil
}

// ComputeFileHash returns the hex digest of a file's content.
// Cancelling ctx aborts the read.
func (fo *FileOps) ComputeFileHash(ctx context.Context, filePath string, algo HashAlgorithm) (string, error) {
	file, err := fo.FS.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", filePath, err)
	}

	defer func() {
		_ = file.Close()
	}()

	hasher := algo.New()
	buf := make([]byte, BufferSize)

	_, err = io.CopyBuffer(hasher, fo.reader(ctx, file), buf)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s for hashing: %w", filePath, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func (fo *FileOps) reader(ctx context.Context, r io.Reader) io.Reader {
	return &throttledReader{ctx: ctx, r: r, limiter: fo.limiter}
}

// compareFileContents compares two readers block by block.
func compareFileContents(r1, r2 io.Reader) (bool, error) {
	buf1 := make([]byte, BufferSize)
	buf2 := make([]byte, BufferSize)

	for {
		n1, err1 := io.ReadFull(r1, buf1) //nolint:varnamelen // n1/n2 are idiomatic for bytes read
		n2, err2 := io.ReadFull(r2, buf2) //nolint:varnamelen // n1/n2 are idiomatic for bytes read

		if err := checkReadErrors(err1, err2); err != nil { //nolint:noinlineerr // scoped to the loop
			return false, err
		}

		if n1 != n2 || string(buf1[:n1]) != string(buf2[:n2]) {
			return false, nil
		}

		if isEnd(err1) && isEnd(err2) {
			return true, nil
		}
	}
}

// checkReadErrors returns the first read error that is not an end of file.
func checkReadErrors(err1, err2 error) error {
	if err1 != nil && !isEnd(err1) {
		return fmt.Errorf("failed to read from first file: %w", err1)
	}

	if err2 != nil && !isEnd(err2) {
		return fmt.Errorf("failed to read from second file: %w", err2)
	}

	return nil
}

func isEnd(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

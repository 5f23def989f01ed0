package dupes

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/joe/dupes/internal/config"
	"github.com/joe/dupes/pkg/fileops"
	"github.com/joe/dupes/pkg/filesystem"
)

// DigestCache remembers content digests between runs. Lookup must only
// answer while size and modTime still match the stored entry.
type DigestCache interface {
	Lookup(path string, size int64, modTime time.Time) (string, bool)
	Store(path string, size int64, modTime time.Time, digest string)
	Forget(path string)
}

// Fingerprinter computes the identifier a file is grouped by.
type Fingerprinter struct {
	method    config.Method
	algorithm fileops.HashAlgorithm
	ops       *fileops.FileOps
	cache     DigestCache
	hits      atomic.Int64
}

// NewFingerprinter returns a fingerprinter for method. MethodHash reads
// content through ops; the other methods only check the file opens.
func NewFingerprinter(method config.Method, algorithm fileops.HashAlgorithm, ops *fileops.FileOps) *Fingerprinter {
	return &Fingerprinter{method: method, algorithm: algorithm, ops: ops}
}

// NeedsContent reports whether fingerprints read file content.
func (f *Fingerprinter) NeedsContent() bool {
	return f.method == config.MethodHash
}

// Fingerprint builds the record for a walked file. An error means the file
// could not be read and should be dropped from the scan.
func (f *Fingerprinter) Fingerprint(ctx context.Context, info filesystem.FileInfo) (FileRecord, error) {
	record := FileRecord{
		Path:         info.Path,
		RelativePath: info.RelativePath,
		Size:         info.Size,
		ModTime:      info.ModTime,
	}

	if !f.NeedsContent() {
		// grouping never reads these, but acting on an unreadable file is not allowed
		err := f.ops.CheckReadable(info.Path)
		if err != nil {
			return FileRecord{}, err //nolint:wrapcheck // already carries the path
		}
	}

	switch f.method {
	case config.MethodSize:
		record.Fingerprint = strconv.FormatInt(info.Size, 10)
	case config.MethodName:
		record.Fingerprint = baseName(info.Path)
	case config.MethodHash:
		if f.cache != nil {
			if digest, ok := f.cache.Lookup(info.Path, info.Size, info.ModTime); ok {
				f.hits.Add(1)
				record.Fingerprint = digest

				return record, nil
			}
		}

		digest, err := f.ops.ComputeFileHash(ctx, info.Path, f.algorithm)
		if err != nil {
			return FileRecord{}, err //nolint:wrapcheck // already carries the path
		}

		if f.cache != nil {
			f.cache.Store(info.Path, info.Size, info.ModTime, digest)
		}

		record.Fingerprint = digest
	default:
		return FileRecord{}, fmt.Errorf("%w: method %v", config.ErrInvalidValue, f.method)
	}

	return record, nil
}

// CacheHits returns how many digests came from the cache.
func (f *Fingerprinter) CacheHits() int {
	return int(f.hits.Load())
}

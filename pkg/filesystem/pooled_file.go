package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/pkg/sftp"
)

// Exported variables.
var (
	ErrNilClient = errors.New("client cannot be nil")
	ErrNilFile   = errors.New("file cannot be nil")
	ErrNilPool   = errors.New("pool cannot be nil")
)

// remoteFile is the part of *sftp.File the duplicate finder reads through.
type remoteFile interface {
	io.Reader
	io.Closer
	Stat() (os.FileInfo, error)
}

// clientPool is the part of SFTPClientPool a pooled file needs.
type clientPool interface {
	Release(client *sftp.Client)
}

// PooledSFTPFile is an open remote file that owns a pool session until closed.
// Close always hands the session back, even when closing the file fails,
// so that a failed read can never starve the pool.
type PooledSFTPFile struct {
	file   remoteFile
	client *sftp.Client
	pool   clientPool
	mu     sync.Mutex
	closed bool
}

// NewPooledSFTPFile wraps file so that Close releases client to pool.
func NewPooledSFTPFile(file remoteFile, client *sftp.Client, pool clientPool) (*PooledSFTPFile, error) {
	switch {
	case file == nil:
		return nil, ErrNilFile
	case client == nil:
		return nil, ErrNilClient
	case pool == nil:
		return nil, ErrNilPool
	}

	return &PooledSFTPFile{file: file, client: client, pool: pool}, nil
}

// Close closes the remote file and releases the session. Safe to call twice.
func (f *PooledSFTPFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}

	f.closed = true
	err := f.file.Close()
	f.pool.Release(f.client)

	return err //nolint:wrapcheck // caller wraps with the path
}

// Read reads from the remote file.
func (f *PooledSFTPFile) Read(p []byte) (int, error) {
	if f.isClosed() {
		return 0, fs.ErrClosed
	}

	return f.file.Read(p) //nolint:wrapcheck // io.Reader contract
}

// Stat returns the remote file's info.
func (f *PooledSFTPFile) Stat() (os.FileInfo, error) {
	if f.isClosed() {
		return nil, fs.ErrClosed
	}

	return f.file.Stat() //nolint:wrapcheck // caller wraps with the path
}

func (f *PooledSFTPFile) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

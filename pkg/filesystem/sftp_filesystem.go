package filesystem

import (
	"fmt"
	"os"
	"path"

	"github.com/pkg/sftp"
)

// SFTPFileSystem implements FileSystem on an SFTP server.
// Hard links use the hardlink@openssh.com extension and renames use
// posix-rename@openssh.com, so both need an OpenSSH server.
type SFTPFileSystem struct {
	pool *SFTPClientPool
}

// NewSFTPFileSystem opens poolSize SFTP sessions over conn.
func NewSFTPFileSystem(conn *SFTPConnection, poolSize int) (*SFTPFileSystem, error) {
	pool, err := NewSFTPClientPool(conn.SSHClient(), poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create SFTP client pool for %s: %w", conn.Endpoint(), err)
	}

	return &SFTPFileSystem{pool: pool}, nil
}

// Close closes the session pool.
func (sfs *SFTPFileSystem) Close() error {
	return sfs.pool.Close()
}

// Join joins remote path elements.
func (sfs *SFTPFileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

// Link creates newname as a hard link to oldname on the server.
func (sfs *SFTPFileSystem) Link(oldname, newname string) error {
	return sfs.withClient(func(client *sftp.Client) error {
		err := client.Link(oldname, newname)
		if err != nil {
			return fmt.Errorf("failed to link remote %s to %s: %w", newname, oldname, err)
		}

		return nil
	})
}

// Lstat returns remote file information without following symlinks.
func (sfs *SFTPFileSystem) Lstat(name string) (os.FileInfo, error) {
	var info os.FileInfo

	err := sfs.withClient(func(client *sftp.Client) error {
		var err error

		info, err = client.Lstat(name)
		if err != nil {
			return fmt.Errorf("failed to lstat remote %s: %w", name, err)
		}

		return nil
	})

	return info, err
}

// Open opens a remote file. The session stays checked out until the file is closed.
func (sfs *SFTPFileSystem) Open(name string) (File, error) {
	client, err := sfs.pool.Acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire SFTP client: %w", err)
	}

	file, err := client.Open(name)
	if err != nil {
		sfs.pool.Release(client)
		return nil, fmt.Errorf("failed to open remote %s: %w", name, err)
	}

	pooled, err := NewPooledSFTPFile(file, client, sfs.pool)
	if err != nil {
		_ = file.Close()
		sfs.pool.Release(client)

		return nil, err
	}

	return pooled, nil
}

// PoolSize returns the number of SFTP sessions.
func (sfs *SFTPFileSystem) PoolSize() int {
	return sfs.pool.Size()
}

// Canonical asks the server for the absolute, symlink-free form of name.
func (sfs *SFTPFileSystem) Canonical(name string) (string, error) {
	var resolved string

	err := sfs.withClient(func(client *sftp.Client) error {
		var err error

		resolved, err = client.RealPath(name)
		if err != nil {
			return fmt.Errorf("failed to resolve remote %s: %w", name, err)
		}

		return nil
	})

	return resolved, err
}

// Remove removes a remote file.
func (sfs *SFTPFileSystem) Remove(name string) error {
	return sfs.withClient(func(client *sftp.Client) error {
		err := client.Remove(name)
		if err != nil {
			return fmt.Errorf("failed to remove remote %s: %w", name, err)
		}

		return nil
	})
}

// Rename replaces newpath with oldpath on the server.
func (sfs *SFTPFileSystem) Rename(oldpath, newpath string) error {
	return sfs.withClient(func(client *sftp.Client) error {
		err := client.PosixRename(oldpath, newpath)
		if err != nil {
			return fmt.Errorf("failed to rename remote %s to %s: %w", oldpath, newpath, err)
		}

		return nil
	})
}

// Scan walks a remote tree. The session is held for the whole walk.
func (sfs *SFTPFileSystem) Scan(root string) FileScanner {
	client, err := sfs.pool.Acquire()
	if err != nil {
		return newFailedScanner(fmt.Errorf("failed to acquire SFTP client: %w", err))
	}

	return newWalkScanner(client.Walk(root), root, slashRel, func() {
		sfs.pool.Release(client)
	})
}

// Stat returns remote file information.
func (sfs *SFTPFileSystem) Stat(name string) (os.FileInfo, error) {
	var info os.FileInfo

	err := sfs.withClient(func(client *sftp.Client) error {
		var err error

		info, err = client.Stat(name)
		if err != nil {
			return fmt.Errorf("failed to stat remote %s: %w", name, err)
		}

		return nil
	})

	return info, err
}

func (sfs *SFTPFileSystem) withClient(op func(client *sftp.Client) error) error {
	client, err := sfs.pool.Acquire()
	if err != nil {
		return fmt.Errorf("failed to acquire SFTP client: %w", err)
	}
	defer sfs.pool.Release(client)

	return op(client)
}

package filesystem

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// ErrPoolClosed is returned by Acquire once the pool has been closed.
var ErrPoolClosed = errors.New("pool is closed")

// SFTPClientPool hands out SFTP sessions multiplexed over one SSH connection.
// The buffered channel is the semaphore: Acquire blocks while every session is in use.
type SFTPClientPool struct {
	clients chan *sftp.Client
	size    int
	mu      sync.Mutex
	closed  bool
}

// NewSFTPClientPool opens size SFTP sessions on sshClient.
func NewSFTPClientPool(sshClient *ssh.Client, size int) (*SFTPClientPool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool size must be greater than 0, got %d", size) //nolint:err113 // validation error with actual value
	}

	pool := &SFTPClientPool{
		clients: make(chan *sftp.Client, size),
		size:    size,
	}

	for i := range size {
		client, err := sftp.NewClient(sshClient)
		if err != nil {
			_ = pool.Close()

			return nil, fmt.Errorf("failed to open SFTP session %d/%d: %w", i+1, size, err)
		}

		pool.clients <- client
	}

	return pool, nil
}

// Acquire takes a session from the pool, waiting for one to be released if needed.
func (p *SFTPClientPool) Acquire() (*sftp.Client, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return nil, ErrPoolClosed
	}

	client, ok := <-p.clients
	if !ok {
		return nil, ErrPoolClosed
	}

	return client, nil
}

// Close closes every idle session. Sessions released later are closed on Release.
// The SSH connection itself belongs to the caller. Close is idempotent.
func (p *SFTPClientPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	close(p.clients)

	var firstErr error

	for client := range p.clients {
		if err := client.Close(); err != nil && firstErr == nil { //nolint:noinlineerr // cleanup loop
			firstErr = err
		}
	}

	return firstErr
}

// Release returns a session to the pool, or closes it if the pool is closed.
func (p *SFTPClientPool) Release(client *sftp.Client) {
	if client == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = client.Close()
		return
	}

	select {
	case p.clients <- client:
	default:
		// more releases than acquires
		_ = client.Close()
	}
}

// Size returns the number of sessions the pool was created with.
func (p *SFTPClientPool) Size() int {
	return p.size
}

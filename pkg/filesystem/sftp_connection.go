package filesystem

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// ErrNoSSHAuth is returned when neither an agent nor a usable default key is available.
var ErrNoSSHAuth = errors.New("no SSH authentication methods available (tried SSH agent and default keys)")

// SFTPConnection holds an established SSH connection to an SFTP endpoint.
type SFTPConnection struct {
	sshClient *ssh.Client
	endpoint  string
}

// Connect dials host:port as user, authenticating with the SSH agent and
// the default keys under ~/.ssh. Host keys are checked against
// ~/.ssh/known_hosts when that file exists.
func Connect(host string, port int, user string) (*SFTPConnection, error) {
	authMethods := sshAuthMethods()
	if len(authMethods) == 0 {
		return nil, ErrNoSSHAuth
	}

	hostKeyCallback, err := hostKeyCallback()
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))

	sshClient, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("SSH connection to %s failed: %w", addr, err)
	}

	return &SFTPConnection{
		sshClient: sshClient,
		endpoint:  fmt.Sprintf("%s@%s", user, addr),
	}, nil
}

// Close closes the SSH connection.
func (c *SFTPConnection) Close() error {
	if c.sshClient == nil {
		return nil
	}

	err := c.sshClient.Close()
	if err != nil {
		return fmt.Errorf("failed to close SSH connection to %s: %w", c.endpoint, err)
	}

	return nil
}

// Endpoint returns user@host:port.
func (c *SFTPConnection) Endpoint() string {
	return c.endpoint
}

// SSHClient returns the underlying SSH client.
func (c *SFTPConnection) SSHClient() *ssh.Client {
	return c.sshClient
}

func hostKeyCallback() (ssh.HostKeyCallback, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec,nilerr // no home directory, nothing to verify against
	}

	knownHostsPath := filepath.Join(homeDir, ".ssh", "known_hosts")
	if _, err := os.Stat(knownHostsPath); err != nil { //nolint:noinlineerr // optional file
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // TODO: prompt to trust unknown hosts instead
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", knownHostsPath, err)
	}

	return callback, nil
}

// sshAuthMethods returns the agent first, then any unencrypted default keys.
func sshAuthMethods() []ssh.AuthMethod {
	var methods []ssh.AuthMethod

	if socket := os.Getenv("SSH_AUTH_SOCK"); socket != "" {
		conn, err := net.Dial("unix", socket)
		if err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return methods
	}

	for _, name := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
		keyData, err := os.ReadFile(filepath.Join(homeDir, ".ssh", name)) // #nosec G304 - fixed key locations
		if err != nil {
			continue
		}

		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			// passphrase-protected keys are left to the agent
			continue
		}

		methods = append(methods, ssh.PublicKeys(signer))
	}

	return methods
}

package filesystem

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultSSHPort is used when an sftp:// URL carries no port.
const DefaultSSHPort = 22

// Exported variables.
var (
	ErrMissingHost = errors.New("SFTP URL must include host")
	ErrMissingUser = errors.New("SFTP URL must include username (sftp://user@host/path)")
)

// Location is a scan root: either a local path or a path on an SFTP server.
type Location struct {
	Remote bool
	User   string
	Host   string
	Port   int
	// Path is the local path, or the remote path for SFTP locations.
	Path string
}

// Endpoint identifies the server a remote location lives on ("" for local).
func (l Location) Endpoint() string {
	if !l.Remote {
		return ""
	}

	return fmt.Sprintf("%s@%s:%d", l.User, l.Host, l.Port)
}

// ParseLocation parses a root argument.
// SFTP URLs look like sftp://user@host[:port]/path:
//   - sftp://joe@nas/photos   → "photos" relative to the login directory
//   - sftp://joe@nas//srv/pub → absolute "/srv/pub"
//   - sftp://joe@nas          → the login directory
//
// Anything else is a local path.
func ParseLocation(raw string) (Location, error) {
	if !strings.HasPrefix(raw, "sftp://") {
		return Location{Path: raw}, nil
	}

	u, err := url.Parse(raw) //nolint:varnamelen // u is idiomatic for URL
	if err != nil {
		return Location{}, fmt.Errorf("invalid SFTP URL: %w", err)
	}

	if u.User == nil || u.User.Username() == "" {
		return Location{}, ErrMissingUser
	}

	if u.Hostname() == "" {
		return Location{}, ErrMissingHost
	}

	port := DefaultSSHPort

	if raw := u.Port(); raw != "" {
		port, err = strconv.Atoi(raw)
		if err != nil {
			return Location{}, fmt.Errorf("invalid port number %q: %w", raw, err)
		}
	}

	return Location{
		Remote: true,
		User:   u.User.Username(),
		Host:   u.Hostname(),
		Port:   port,
		Path:   remotePath(u.Path),
	}, nil
}

func remotePath(p string) string {
	switch {
	case p == "" || p == "/":
		return "."
	case strings.HasPrefix(p, "//"):
		return p[1:]
	default:
		return strings.TrimPrefix(p, "/")
	}
}

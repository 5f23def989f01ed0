package filesystem

import (
	"errors"
	"fmt"
)

// Exported variables.
var (
	ErrMixedEndpoints = errors.New("all roots must be on the same filesystem")
	ErrNoRoots        = errors.New("no directories given")
)

// OpenRoots parses every root and opens the one filesystem they share.
// Returns (filesystem, root paths for that filesystem, closer, error).
// Roots must be all local or all on one SFTP endpoint, because hard links
// and group decisions only make sense within a single filesystem.
// sessions is the SFTP pool size; it is ignored for local roots.
func OpenRoots(roots []string, sessions int) (FileSystem, []string, func(), error) {
	if len(roots) == 0 {
		return nil, nil, nil, ErrNoRoots
	}

	locations := make([]Location, 0, len(roots))

	for _, root := range roots {
		loc, err := ParseLocation(root)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid root %q: %w", root, err)
		}

		if len(locations) > 0 && loc.Endpoint() != locations[0].Endpoint() {
			return nil, nil, nil, fmt.Errorf("%w: %q and %q", ErrMixedEndpoints, roots[0], root)
		}

		locations = append(locations, loc)
	}

	paths := make([]string, len(locations))
	for i, loc := range locations {
		paths[i] = loc.Path
	}

	first := locations[0]
	if !first.Remote {
		local := NewRealFileSystem()

		// missing roots stay as given; the engine reports them
		for i, p := range paths {
			if resolved, err := local.Canonical(p); err == nil { //nolint:noinlineerr // fallback is the raw path
				paths[i] = resolved
			}
		}

		return local, paths, func() {}, nil
	}

	conn, err := Connect(first.Host, first.Port, first.User)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to %s: %w", first.Endpoint(), err)
	}

	sfs, err := NewSFTPFileSystem(conn, max(sessions, 2)) //nolint:mnd // the walk holds one session
	if err != nil {
		_ = conn.Close()
		return nil, nil, nil, err
	}

	closer := func() {
		_ = sfs.Close()
		_ = conn.Close()
	}

	return sfs, paths, closer, nil
}

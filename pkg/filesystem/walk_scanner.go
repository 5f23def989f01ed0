package filesystem

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/kr/fs"
)

// ErrOutsideRoot is reported for walked paths that do not sit below the scan root.
var ErrOutsideRoot = errors.New("path outside scan root")

// relFunc computes the path of target relative to base.
type relFunc func(base, target string) (string, error)

// walkScanner implements FileScanner on top of a kr/fs walker.
// The same walker type drives local, SFTP and in-memory trees.
type walkScanner struct {
	walker  *fs.Walker
	root    string
	rel     relFunc
	release func()
	skipped []error
	err     error
	done    bool
}

func newWalkScanner(walker *fs.Walker, root string, rel relFunc, release func()) *walkScanner {
	return &walkScanner{
		walker:  walker,
		root:    root,
		rel:     rel,
		release: release,
	}
}

// newFailedScanner returns a scanner that yields nothing and reports err.
func newFailedScanner(err error) *walkScanner {
	return &walkScanner{err: err, done: true}
}

// Err returns the error that stopped the walk.
func (s *walkScanner) Err() error {
	return s.err
}

// Next advances to the next readable entry below the root.
func (s *walkScanner) Next() (FileInfo, bool) {
	for !s.done && s.walker.Step() {
		path := s.walker.Path()

		if err := s.walker.Err(); err != nil { //nolint:noinlineerr // walker error is per entry
			if path == s.root {
				s.err = fmt.Errorf("cannot walk %s: %w", s.root, err)
				s.finish()

				return FileInfo{}, false
			}

			s.skipped = append(s.skipped, err)

			continue
		}

		if path == s.root {
			continue
		}

		relPath, err := s.rel(s.root, path)
		if err != nil {
			s.skipped = append(s.skipped, fmt.Errorf("failed to get relative path for %s: %w", path, err))
			continue
		}

		stat := s.walker.Stat()

		return FileInfo{
			Path:         path,
			RelativePath: relPath,
			Size:         stat.Size(),
			ModTime:      stat.ModTime(),
			Mode:         stat.Mode(),
		}, true
	}

	s.finish()

	return FileInfo{}, false
}

// Skipped returns errors for unreadable entries below the root.
func (s *walkScanner) Skipped() []error {
	return s.skipped
}

func (s *walkScanner) finish() {
	if s.done && s.release == nil {
		return
	}

	s.done = true

	if s.release != nil {
		s.release()
		s.release = nil
	}
}

// slashRel is filepath.Rel for slash-separated trees (SFTP and the mock).
func slashRel(base, target string) (string, error) {
	base = path.Clean(base)
	target = path.Clean(target)

	if base == target {
		return ".", nil
	}

	prefix := base
	if prefix != "/" {
		prefix += "/"
	}

	if base == "." && !strings.HasPrefix(target, "/") {
		return target, nil
	}

	if !strings.HasPrefix(target, prefix) {
		return "", fmt.Errorf("%w: %s is not under %s", ErrOutsideRoot, target, base)
	}

	return strings.TrimPrefix(target, prefix), nil
}

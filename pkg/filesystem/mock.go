package filesystem

import (
	"bytes"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	krfs "github.com/kr/fs"
)

// MockFileSystem is an in-memory filesystem for tests.
// Paths are slash-separated. Hard links share one node, and mount points
// can be declared so that links across them fail with EXDEV.
type MockFileSystem struct {
	mu       sync.RWMutex
	entries  map[string]*mockEntry
	mounts   map[string]int
	failures map[string]error
	symlinks map[string]string
}

// mockNode is the shared content behind one or more hard links.
type mockNode struct {
	data    []byte
	modTime time.Time
}

type mockEntry struct {
	node    *mockNode
	modTime time.Time
	isDir   bool
}

type mockFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	mode    os.FileMode
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *mockFileInfo) Sys() any           { return nil }

type mockFileHandle struct {
	reader *bytes.Reader
	info   os.FileInfo
	closed bool
}

func (f *mockFileHandle) Read(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}

	return f.reader.Read(p)
}

func (f *mockFileHandle) Close() error {
	if f.closed {
		return os.ErrClosed
	}

	f.closed = true

	return nil
}

func (f *mockFileHandle) Stat() (os.FileInfo, error) {
	if f.closed {
		return nil, os.ErrClosed
	}

	return f.info, nil
}

// NewMockFileSystem creates an empty in-memory filesystem with a root directory.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		entries: map[string]*mockEntry{
			"/": {isDir: true, modTime: time.Now()},
		},
		mounts:   make(map[string]int),
		failures: make(map[string]error),
		symlinks: make(map[string]string),
	}
}

// Canonical resolves name against "/" and through symlinks added with
// AddSymlink. The result must exist.
func (m *MockFileSystem) Canonical(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resolved := path.Clean("/" + name)

	for link, target := range m.symlinks {
		if resolved == link || strings.HasPrefix(resolved, link+"/") {
			resolved = target + strings.TrimPrefix(resolved, link)
			break
		}
	}

	if _, ok := m.entries[resolved]; !ok {
		return "", &fs.PathError{Op: "canonical", Path: name, Err: fs.ErrNotExist}
	}

	return resolved, nil
}

// Join joins path elements with forward slashes.
func (m *MockFileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

// Link creates newname as another name for oldname's node.
func (m *MockFileSystem) Link(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.failure("link", newname)
	if err == nil {
		err = m.failure("link", oldname)
	}

	if err != nil {
		return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: err}
	}

	src, ok := m.entries[oldname]
	if !ok || src.isDir {
		return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: fs.ErrNotExist}
	}

	if _, exists := m.entries[newname]; exists {
		return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: fs.ErrExist}
	}

	if m.deviceOf(oldname) != m.deviceOf(newname) {
		return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: syscall.EXDEV}
	}

	m.mkdirAllLocked(path.Dir(newname))
	m.entries[newname] = &mockEntry{node: src.node}

	return nil
}

// Lstat returns file information for path.
func (m *MockFileSystem) Lstat(name string) (os.FileInfo, error) {
	return m.Stat(name)
}

// Open opens a file for reading.
func (m *MockFileSystem) Open(name string) (File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("open", name); err != nil { //nolint:noinlineerr // injected failure
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}

	entry, ok := m.entries[name]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	if entry.isDir {
		return nil, &os.PathError{Op: "open", Path: name, Err: syscall.EISDIR}
	}

	return &mockFileHandle{
		reader: bytes.NewReader(entry.node.data),
		info:   m.infoLocked(name, entry),
	}, nil
}

// ReadDir lists the direct children of dirname sorted by name.
func (m *MockFileSystem) ReadDir(dirname string) ([]os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("readdir", dirname); err != nil { //nolint:noinlineerr // injected failure
		return nil, &os.PathError{Op: "readdir", Path: dirname, Err: err}
	}

	dir, ok := m.entries[dirname]
	if !ok || !dir.isDir {
		return nil, &os.PathError{Op: "readdir", Path: dirname, Err: fs.ErrNotExist}
	}

	var infos []os.FileInfo

	for p, entry := range m.entries {
		if p != dirname && path.Dir(p) == dirname {
			infos = append(infos, m.infoLocked(p, entry))
		}
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name() < infos[j].Name()
	})

	return infos, nil
}

// Remove deletes a file or an empty directory.
func (m *MockFileSystem) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("remove", name); err != nil { //nolint:noinlineerr // injected failure
		return &os.PathError{Op: "remove", Path: name, Err: err}
	}

	entry, ok := m.entries[name]
	if !ok {
		return &os.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}

	if entry.isDir {
		for p := range m.entries {
			if strings.HasPrefix(p, name+"/") {
				return &os.PathError{Op: "remove", Path: name, Err: syscall.ENOTEMPTY}
			}
		}
	}

	delete(m.entries, name)

	return nil
}

// Rename moves oldpath over newpath.
func (m *MockFileSystem) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("rename", newpath); err != nil { //nolint:noinlineerr // injected failure
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: err}
	}

	entry, ok := m.entries[oldpath]
	if !ok {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrNotExist}
	}

	if m.deviceOf(oldpath) != m.deviceOf(newpath) {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}

	delete(m.entries, oldpath)
	m.entries[newpath] = entry

	return nil
}

// SameFile reports whether both paths share a node.
func (m *MockFileSystem) SameFile(path1, path2 string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e1, ok1 := m.entries[path1]
	e2, ok2 := m.entries[path2]

	if !ok1 || !ok2 {
		return false, fs.ErrNotExist
	}

	return !e1.isDir && e1.node == e2.node, nil
}

// Scan walks the in-memory tree below root.
func (m *MockFileSystem) Scan(root string) FileScanner {
	return newWalkScanner(krfs.WalkFS(root, m), root, slashRel, nil)
}

// Stat returns file information.
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("stat", name); err != nil { //nolint:noinlineerr // injected failure
		return nil, &os.PathError{Op: "stat", Path: name, Err: err}
	}

	entry, ok := m.entries[name]
	if !ok {
		return nil, &os.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}

	return m.infoLocked(name, entry), nil
}

// Helper methods for testing

// AddFile adds a file with the given content and modtime, creating parents.
func (m *MockFileSystem) AddFile(name string, content []byte, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mkdirAllLocked(path.Dir(name))
	m.entries[name] = &mockEntry{
		node: &mockNode{data: append([]byte(nil), content...), modTime: modTime},
	}
}

// AddDir adds a directory and its parents.
func (m *MockFileSystem) AddDir(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mkdirAllLocked(name)
}

// AddSymlink makes link another name for the directory target. Only
// Canonical follows it; scans always start from a canonical root.
func (m *MockFileSystem) AddSymlink(link, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.symlinks[path.Clean(link)] = path.Clean(target)
}

// Mount marks every path below prefix as living on device.
func (m *MockFileSystem) Mount(prefix string, device int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mounts[prefix] = device
}

// InjectError makes the next and all later op calls on name fail with err.
// op is one of open, stat, readdir, remove, link, rename.
func (m *MockFileSystem) InjectError(op, name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failures[op+":"+name] = err
}

// Exists checks if a path exists.
func (m *MockFileSystem) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[name]

	return ok
}

// ReadFile returns a copy of a file's content.
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[name]
	if !ok || entry.isDir {
		return nil, fs.ErrNotExist
	}

	return append([]byte(nil), entry.node.data...), nil
}

// ListFiles returns all regular file paths, sorted.
func (m *MockFileSystem) ListFiles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.entries))

	for p, entry := range m.entries {
		if !entry.isDir {
			paths = append(paths, p)
		}
	}

	sort.Strings(paths)

	return paths
}

func (m *MockFileSystem) deviceOf(name string) int {
	device, longest := 0, -1

	for prefix, dev := range m.mounts {
		if (name == prefix || strings.HasPrefix(name, strings.TrimSuffix(prefix, "/")+"/")) && len(prefix) > longest {
			device, longest = dev, len(prefix)
		}
	}

	return device
}

func (m *MockFileSystem) failure(op, name string) error {
	return m.failures[op+":"+name]
}

func (m *MockFileSystem) infoLocked(name string, entry *mockEntry) *mockFileInfo {
	if entry.isDir {
		return &mockFileInfo{name: path.Base(name), modTime: entry.modTime, mode: os.ModeDir | 0o755}
	}

	return &mockFileInfo{
		name:    path.Base(name),
		size:    int64(len(entry.node.data)),
		modTime: entry.node.modTime,
		mode:    0o644,
	}
}

func (m *MockFileSystem) mkdirAllLocked(dir string) {
	for dir != "/" && dir != "." {
		if _, exists := m.entries[dir]; !exists {
			m.entries[dir] = &mockEntry{isDir: true, modTime: time.Now()}
		}

		dir = path.Dir(dir)
	}
}

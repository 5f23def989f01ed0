package dupes

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/joe/dupes/pkg/filesystem"
)

// FileFilter decides whether a walked entry takes part in the scan.
type FileFilter interface {
	ShouldInclude(info filesystem.FileInfo) bool
}

// Filter applies the inclusion rules in order: regular file, exclude
// regex, extension allow-list, include glob, minimum size.
type Filter struct {
	minSize    int64
	extensions map[string]struct{}
	exclude    *regexp.Regexp
	glob       *GlobFilter
}

// NewFilter builds a filter. Extensions must already be lowercase and
// without leading dots. A nil exclude, empty extension list, empty pattern
// or non-positive minSize disables that rule.
func NewFilter(minSize int64, extensions []string, exclude *regexp.Regexp, pattern string) *Filter {
	filter := &Filter{
		minSize: minSize,
		exclude: exclude,
		glob:    NewGlobFilter(pattern),
	}

	if len(extensions) > 0 {
		filter.extensions = make(map[string]struct{}, len(extensions))
		for _, ext := range extensions {
			filter.extensions[ext] = struct{}{}
		}
	}

	return filter
}

// ShouldInclude reports whether the entry passes every rule.
func (f *Filter) ShouldInclude(info filesystem.FileInfo) bool {
	if !info.IsRegular() {
		return false
	}

	if f.exclude != nil && f.exclude.MatchString(info.Path) {
		return false
	}

	if f.extensions != nil {
		ext, ok := extensionOf(info.Path)
		if !ok {
			return false
		}

		if _, allowed := f.extensions[ext]; !allowed {
			return false
		}
	}

	if !f.glob.ShouldInclude(info.RelativePath) {
		return false
	}

	return f.minSize <= 0 || info.Size >= f.minSize
}

// GlobFilter matches relative paths against a doublestar pattern,
// case-insensitively.
type GlobFilter struct {
	normalizedPattern string
	isEmpty           bool
}

// NewGlobFilter creates a new GlobFilter with the given pattern.
// Empty pattern matches all files.
func NewGlobFilter(pattern string) *GlobFilter {
	return &GlobFilter{
		normalizedPattern: strings.ToLower(pattern),
		isEmpty:           pattern == "",
	}
}

// ShouldInclude returns true if the relative path matches the pattern.
func (f *GlobFilter) ShouldInclude(relativePath string) bool {
	if f.isEmpty {
		return true
	}

	normalizedPath := strings.ToLower(filepath.ToSlash(relativePath))

	matched, err := doublestar.Match(f.normalizedPattern, normalizedPath)
	if err != nil {
		return false
	}

	return matched
}

// extensionOf returns the lowercase text after the last dot of the base name.
func extensionOf(p string) (string, bool) {
	base := baseName(p)

	dot := strings.LastIndexByte(base, '.')
	if dot < 0 || dot == len(base)-1 {
		return "", false
	}

	return strings.ToLower(base[dot+1:]), true
}

// baseName works for OS paths and the slash paths of SFTP and the mock.
func baseName(p string) string {
	return path.Base(filepath.ToSlash(p))
}

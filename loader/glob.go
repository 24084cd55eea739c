package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const globMeta = "*?{["

// IsGlob reports whether an include path contains glob syntax.
func IsGlob(p string) bool {
	return strings.ContainsAny(p, globMeta)
}

// Glob expands pattern relative to baseDir and returns matching regular files, sorted.
//
// Supported syntax is doublestar's: "*", "?", "[...]" classes, "{a,b}" alternatives and "**"
// matching any number of directories.
func Glob(baseDir, pattern string) ([]string, error) {
	pattern = strings.ReplaceAll(pattern, `\`, "/")
	idx := strings.IndexAny(pattern, globMeta)
	if idx < 0 {
		return []string{filepath.Join(baseDir, filepath.FromSlash(pattern))}, nil
	}

	// Match from the last complete directory before the first glob character, so that the
	// base directory itself is never read as a pattern.
	prefix, rest := "", pattern
	if slash := strings.LastIndex(pattern[:idx], "/"); slash >= 0 {
		prefix, rest = pattern[:slash+1], pattern[slash+1:]
	}
	root := filepath.FromSlash(prefix)
	if !filepath.IsAbs(root) {
		root = filepath.Join(baseDir, root)
	}
	root = filepath.Clean(root)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	if !doublestar.ValidatePattern(rest) {
		return nil, fmt.Errorf("invalid include pattern %q", pattern)
	}

	// A missing root or unreadable subtree yields no matches.
	matches, err := doublestar.Glob(os.DirFS(root), rest, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to expand include pattern %q: %w", pattern, err)
	}

	files := make([]string, len(matches))
	for i, m := range matches {
		files[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	slices.Sort(files)
	return files, nil
}

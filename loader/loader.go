// Package loader reads ledger statement files from disk and resolves include paths.
//
// A Loader is the file-system Source the analyzer walks: it decodes one file at a time and
// turns an include path (absolute, relative to the including file, or a shell glob) into
// absolute file paths. It remembers every file it loaded so callers can watch them.
//
// Example usage:
//
//	ldr := loader.New()
//	analyzer := ledger.New(ldr)
//	result, err := analyzer.Analyze(ctx, "main.yaml")
//	watched := ldr.Files()
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/robinvdvleuten/beanledger/ast"
	"github.com/robinvdvleuten/beanledger/telemetry"
)

// DecodeFunc turns the contents of a file into its statement list.
type DecodeFunc func(filename string, data []byte) (*ast.File, error)

// Loader reads and decodes ledger files. Configure it with functional options passed to New:
//
//	ldr := New(WithDecoder(myParser))
type Loader struct {
	decode DecodeFunc

	mu    sync.Mutex
	files []string
	seen  map[string]bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithDecoder replaces the YAML statement-document decoder, for example with a ledger text
// parser producing the same AST.
func WithDecoder(decode DecodeFunc) Option {
	return func(l *Loader) {
		l.decode = decode
	}
}

// New creates a Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{
		decode: ast.DecodeBytes,
		seen:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and decodes the file at path.
func (l *Loader) Load(ctx context.Context, path string) (*ast.File, error) {
	_, timer := telemetry.StartTimer(ctx, "load "+filepath.Base(path))
	defer timer.End()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	l.record(path)

	file, err := l.decode(path, data)
	if err != nil {
		return nil, err
	}
	file.Filename = path
	return file, nil
}

// Exists reports whether path names a regular file.
func (l *Loader) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Resolve returns the absolute files an include path refers to. Relative paths are resolved
// against the directory of fromFile. A plain path is returned as-is (even if it does not
// exist); a glob returns its sorted matches, possibly none.
func (l *Loader) Resolve(fromFile, includePath string) ([]string, error) {
	baseDir := filepath.Dir(fromFile)
	if !filepath.IsAbs(baseDir) {
		abs, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", baseDir, err)
		}
		baseDir = abs
	}

	if !IsGlob(includePath) {
		path := filepath.FromSlash(includePath)
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return []string{filepath.Clean(path)}, nil
	}
	return Glob(baseDir, includePath)
}

// Files returns the absolute paths of every file loaded so far, in first-load order.
func (l *Loader) Files() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.files)
}

func (l *Loader) record(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.seen[path] {
		l.seen[path] = true
		l.files = append(l.files, path)
	}
}

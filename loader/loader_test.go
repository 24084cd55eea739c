package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beanledger/ast"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	mainFile := writeFile(t, filepath.Join(tmpDir, "main.yaml"), `
statements:
  - directive: {type: open, date: 2024-01-01, account: Assets:Checking, currencies: [USD]}
  - txn:
      date: 2024-01-02
      narration: Test
      postings:
        - {account: Assets:Checking, number: "100.00", currency: USD}
        - {account: Equity:Opening-Balances}
`)

	ldr := New()
	file, err := ldr.Load(context.Background(), mainFile)
	assert.NoError(t, err)
	assert.Equal(t, mainFile, file.Filename)
	assert.Equal(t, 2, len(file.Statements))
	assert.Equal(t, []string{mainFile}, ldr.Files())
	assert.True(t, ldr.Exists(mainFile))
}

func TestLoadNonExistentFile(t *testing.T) {
	ldr := New()
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := ldr.Load(context.Background(), missing)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, ldr.Exists(missing))
	assert.Equal(t, 0, len(ldr.Files()))
}

func TestLoadDecodeError(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "bad.yaml"), "statements:\n  - {}\n")

	_, err := New().Load(context.Background(), path)
	var decodeErr *ast.DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestLoadCancelled(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "main.yaml"), "statements: []\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Load(ctx, path)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoadWithDecoder(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "main.ledger"), "anything")
	ldr := New(WithDecoder(func(filename string, data []byte) (*ast.File, error) {
		return &ast.File{Statements: []ast.Statement{ast.NewClose("2024-01-01", string(data))}}, nil
	}))

	file, err := ldr.Load(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, path, file.Filename)
	assert.Equal(t, "anything", file.Statements[0].(*ast.Close).Account)
}

func TestResolve(t *testing.T) {
	tmpDir := t.TempDir()
	from := filepath.Join(tmpDir, "books", "main.yaml")

	tests := []struct {
		name    string
		include string
		want    string
	}{
		{"Relative", "accounts.yaml", filepath.Join(tmpDir, "books", "accounts.yaml")},
		{"ParentDirectory", "../shared/prices.yaml", filepath.Join(tmpDir, "shared", "prices.yaml")},
		{"DotSegments", "./sub/../accounts.yaml", filepath.Join(tmpDir, "books", "accounts.yaml")},
		{"Absolute", filepath.Join(tmpDir, "abs.yaml"), filepath.Join(tmpDir, "abs.yaml")},
	}

	ldr := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ldr.Resolve(from, tt.include)
			assert.NoError(t, err)
			assert.Equal(t, []string{tt.want}, got)
		})
	}
}

func TestResolveGlob(t *testing.T) {
	tmpDir := t.TempDir()
	from := filepath.Join(tmpDir, "main.yaml")
	writeFile(t, filepath.Join(tmpDir, "accounts", "b.yaml"), "")
	writeFile(t, filepath.Join(tmpDir, "accounts", "a.yaml"), "")
	writeFile(t, filepath.Join(tmpDir, "accounts", "notes.txt"), "")
	writeFile(t, filepath.Join(tmpDir, "accounts", "2024", "c.yaml"), "")
	writeFile(t, filepath.Join(tmpDir, "prices", "p.yaml"), "")

	ldr := New()

	t.Run("Star", func(t *testing.T) {
		got, err := ldr.Resolve(from, "accounts/*.yaml")
		assert.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(tmpDir, "accounts", "a.yaml"),
			filepath.Join(tmpDir, "accounts", "b.yaml"),
		}, got)
	})

	t.Run("DoubleStar", func(t *testing.T) {
		got, err := ldr.Resolve(from, "accounts/**/*.yaml")
		assert.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(tmpDir, "accounts", "2024", "c.yaml"),
			filepath.Join(tmpDir, "accounts", "a.yaml"),
			filepath.Join(tmpDir, "accounts", "b.yaml"),
		}, got)
	})

	t.Run("Braces", func(t *testing.T) {
		got, err := ldr.Resolve(from, "{accounts,prices}/{a,p}.yaml")
		assert.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(tmpDir, "accounts", "a.yaml"),
			filepath.Join(tmpDir, "prices", "p.yaml"),
		}, got)
	})

	t.Run("PartialSegment", func(t *testing.T) {
		got, err := ldr.Resolve(from, "acc*/?.yaml")
		assert.NoError(t, err)
		assert.Equal(t, 2, len(got))
	})

	t.Run("NoMatch", func(t *testing.T) {
		got, err := ldr.Resolve(from, "missing/*.yaml")
		assert.NoError(t, err)
		assert.Equal(t, 0, len(got))
	})
}

func TestGlob(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a1.yaml"), "")
	writeFile(t, filepath.Join(tmpDir, "a2.yaml"), "")
	writeFile(t, filepath.Join(tmpDir, "b.yaml"), "")
	writeFile(t, filepath.Join(tmpDir, "c.yaml"), "")
	assert.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "dir.yaml"), 0o755))

	t.Run("NestedBraces", func(t *testing.T) {
		got, err := Glob(tmpDir, "{a{1,2},b}.yaml")
		assert.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(tmpDir, "a1.yaml"),
			filepath.Join(tmpDir, "a2.yaml"),
			filepath.Join(tmpDir, "b.yaml"),
		}, got)
	})

	t.Run("FilesOnly", func(t *testing.T) {
		got, err := Glob(tmpDir, "*.yaml")
		assert.NoError(t, err)
		assert.Equal(t, 4, len(got))
	})

	t.Run("Literal", func(t *testing.T) {
		got, err := Glob(tmpDir, "c.yaml")
		assert.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(tmpDir, "c.yaml")}, got)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := Glob(tmpDir, "[a.yaml")
		assert.Error(t, err)
	})
}

func TestIsGlob(t *testing.T) {
	assert.True(t, IsGlob("*.yaml"))
	assert.True(t, IsGlob("[ab].yaml"))
	assert.True(t, IsGlob("{a,b}.yaml"))
	assert.False(t, IsGlob("accounts/main.yaml"))
}

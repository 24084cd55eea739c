package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/beanledger/ledger"
)

func TestCommandError(t *testing.T) {
	var err error = NewCommandError(2)

	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 2, cmdErr.ExitCode())
	assert.Equal(t, "command failed", err.Error())
}

func TestAnalyzeOnceResult(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		exitCode int
		check    func(t *testing.T, err error)
		loaded   int
	}{
		{
			name:     "clean pass",
			files:    map[string]string{"main.yaml": brokerLedger},
			exitCode: 0,
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
			loaded: 1,
		},
		{
			name: "error diagnostics",
			files: map[string]string{"main.yaml": `
statements:
  - directive: {type: open, date: "2024-01-01", account: "Assets:Bank"}
  - include: {path: missing.yaml}
`},
			exitCode: 1,
			check: func(t *testing.T, err error) {
				var validation *ledger.ValidationErrors
				assert.True(t, errors.As(err, &validation))
				assert.Equal(t, 1, len(validation.Errors))
				assert.Contains(t, validation.Errors[0].Error(), "Ledger file not found")
			},
			loaded: 1,
		},
		{
			name: "fatal include cycle",
			files: map[string]string{
				"main.yaml":  "statements:\n  - include: {path: other.yaml}\n",
				"other.yaml": "statements:\n  - include: {path: main.yaml}\n",
			},
			exitCode: 1,
			check: func(t *testing.T, err error) {
				var cycle *ledger.IncludeCycleError
				assert.True(t, errors.As(err, &cycle))
			},
			loaded: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}

			cmd := &AnalyzeCmd{File: filepath.Join(dir, "main.yaml"), Format: "text"}
			var stdout, stderr bytes.Buffer
			result, files := cmd.analyzeOnce(&stdout, &stderr, &Globals{})

			assert.Equal(t, tt.exitCode, result.ExitCode)
			tt.check(t, result.Err)
			assert.Equal(t, tt.loaded, len(files))
		})
	}
}

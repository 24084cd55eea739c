package ledger

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beanledger/ast"
)

func TestDiagnostic(t *testing.T) {
	stmt := ast.At(ast.NewOpen("2024-01-01", "Assets:Cash", nil, ""), "main.bean", 10)
	d := Diagnostic{
		Level:      LevelWarning,
		Message:    "Account used before open: Assets:Cash",
		SourceFile: "main.bean",
		SourceLine: 10,
		Statement:  stmt,
	}

	assert.Equal(t, "main.bean:10: Account used before open: Assets:Cash", d.Error())
	assert.Equal(t, "WARNING", d.GetLevel())
	assert.Equal(t, ast.Position{Filename: "main.bean", Line: 10}, d.GetPosition())
	assert.Equal(t, ast.Statement(stmt), d.GetStatement())

	d.SourceFile = ""
	assert.Equal(t, "Account used before open: Assets:Cash", d.Error())
}

func TestDiagnostics_Filters(t *testing.T) {
	ds := Diagnostics{
		{Level: LevelInfo, Message: "a"},
		{Level: LevelError, Message: "b", SourceFile: "x.bean", SourceLine: 1},
		{Level: LevelWarning, Message: "c"},
		{Level: LevelError, Message: "d"},
	}

	assert.Equal(t, []string{"ERROR b", "ERROR d"}, messages(ds.Errors()))
	assert.Equal(t, []string{"WARNING c"}, messages(ds.Warnings()))
	assert.True(t, ds.HasErrors())
	assert.False(t, ds.Warnings().HasErrors())

	err := ds.AsError()
	var verrs *ValidationErrors
	assert.True(t, errors.As(err, &verrs))
	assert.Equal(t, 2, len(verrs.Errors))
	assert.Equal(t, "2 validation errors occurred", err.Error())

	assert.NoError(t, ds.Warnings().AsError())
	assert.Equal(t, "x.bean:1: b", ds[1:2].AsError().Error())
}

func TestFatalErrors(t *testing.T) {
	pos := ast.Position{Filename: "main.bean", Line: 3}

	fatal := &FatalError{Pos: pos, Message: "Failed to read ledger: a.bean", Err: fs.ErrNotExist}
	assert.Equal(t, "main.bean:3: Failed to read ledger: a.bean", fatal.Error())
	assert.True(t, errors.Is(fatal, fs.ErrNotExist))
	assert.Equal(t, pos, fatal.GetPosition())

	cycle := &IncludeCycleError{Pos: pos, Path: "/ledger/main.bean"}
	assert.Equal(t, "main.bean:3: Recursive include detected: /ledger/main.bean", cycle.Error())
	assert.Equal(t, pos, cycle.GetPosition())

	depth := &IncludeDepthError{Pos: pos, Path: "/ledger/deep.bean", Limit: 4}
	assert.Equal(t, "main.bean:3: Include depth limit of 4 exceeded at /ledger/deep.bean", depth.Error())

	root := &FatalError{Message: "Ledger file not found: /ledger/main.bean"}
	assert.Equal(t, "Ledger file not found: /ledger/main.bean", root.Error())
}

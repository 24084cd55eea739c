package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beanledger/ast"
)

func TestTagStack(t *testing.T) {
	var s tagStack
	assert.False(t, s.pop(""))

	s.push("a")
	s.push("b")
	s.push("a")
	s.push("c")

	// The most recent occurrence goes; the rest keep their order.
	assert.True(t, s.pop("a"))
	assert.Equal(t, tagStack{"a", "b", "c"}, s)

	assert.False(t, s.pop("x"))
	assert.True(t, s.pop(""))
	assert.Equal(t, tagStack{"a", "b"}, s)
}

func TestMetaStack(t *testing.T) {
	var s metaStack
	s.push(ast.Metadata{Key: "trip", Value: "paris"})
	s.push(ast.Metadata{Key: "budget", Value: "travel"})
	s.push(ast.Metadata{Key: "trip", Value: "rome"})

	assert.True(t, s.pop("trip"))
	assert.Equal(t, metaStack{{Key: "trip", Value: "paris"}, {Key: "budget", Value: "travel"}}, s)
	assert.False(t, s.pop("missing"))
	assert.True(t, s.pop(""))
	assert.Equal(t, metaStack{{Key: "trip", Value: "paris"}}, s)
}

func TestParsePushMeta(t *testing.T) {
	tests := []struct {
		input  string
		want   ast.Metadata
		wantOK bool
	}{
		{input: `location: "Paris, France"`, want: ast.Metadata{Key: "location", Value: "Paris, France"}, wantOK: true},
		{input: "trip summer-2024", want: ast.Metadata{Key: "trip", Value: "summer-2024"}, wantOK: true},
		{input: "flag:", want: ast.Metadata{Key: "flag"}, wantOK: true},
		{input: "quoted 'single'", want: ast.Metadata{Key: "quoted", Value: "single"}, wantOK: true},
		{input: "novalue"},
		{input: ": value"},
		{input: "  "},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parsePushMeta(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "trip", normalizeTag(" #trip "))
	assert.Equal(t, "trip", normalizeTag("trip"))
	assert.Equal(t, "", normalizeTag("#"))
}

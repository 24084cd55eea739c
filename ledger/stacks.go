package ledger

import (
	"strings"

	"github.com/robinvdvleuten/beanledger/ast"
)

// tagStack holds the tags pushed with pushtag, oldest first.
type tagStack []string

func (s *tagStack) push(tag string) {
	*s = append(*s, tag)
}

// pop removes the most recent occurrence of tag, or the top of the stack when tag is empty.
// It reports false when nothing was removed.
func (s *tagStack) pop(tag string) bool {
	stack := *s
	if len(stack) == 0 {
		return false
	}
	if tag == "" {
		*s = stack[:len(stack)-1]
		return true
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == tag {
			*s = append(stack[:i], stack[i+1:]...)
			return true
		}
	}
	return false
}

// metaStack holds the entries pushed with pushmeta, oldest first.
type metaStack []ast.Metadata

func (s *metaStack) push(entry ast.Metadata) {
	*s = append(*s, entry)
}

// pop removes the most recent entry with key, or the top of the stack when key is empty.
func (s *metaStack) pop(key string) bool {
	stack := *s
	if len(stack) == 0 {
		return false
	}
	if key == "" {
		*s = stack[:len(stack)-1]
		return true
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].Key == key {
			*s = append(stack[:i], stack[i+1:]...)
			return true
		}
	}
	return false
}

// parsePushMeta splits a pushmeta argument into key and value. The key ends at the first
// colon, or at the first space when there is none. Quotes around the value are dropped.
//
//	location: "Paris"  ->  {location Paris}
func parsePushMeta(arg string) (ast.Metadata, bool) {
	arg = strings.TrimSpace(arg)
	sep := strings.IndexByte(arg, ':')
	if sep < 0 {
		sep = strings.IndexByte(arg, ' ')
	}
	if sep < 0 {
		return ast.Metadata{}, false
	}
	key := strings.TrimSpace(arg[:sep])
	value := strings.TrimSpace(arg[sep+1:])
	value = unquote(value)
	if key == "" {
		return ast.Metadata{}, false
	}
	return ast.Metadata{Key: key, Value: value}, true
}

// unquote strips one pair of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

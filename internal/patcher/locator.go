package patcher

import (
	"bytes"

	"github.com/sokinpui/routepin/model"
)

// Locator finds the first line that starts with one of a closed set of
// signature prefixes.
type Locator struct {
	prefixes [][]byte
	names    []string
}

// NewLocator builds a Locator. Prefixes are tried in the order given.
func NewLocator(prefixes []string) *Locator {
	l := &Locator{
		prefixes: make([][]byte, len(prefixes)),
		names:    make([]string, len(prefixes)),
	}
	for i, p := range prefixes {
		l.prefixes[i] = []byte(p)
		l.names[i] = p
	}
	return l
}

// Locate returns the first anchor line in text. Lines are only considered
// when the prefix is flush with column 0.
func (l *Locator) Locate(text []byte) (model.AnchorMatch, bool) {
	offset := 0
	for lineNo := 1; offset <= len(text); lineNo++ {
		end := bytes.IndexByte(text[offset:], '\n')
		var line []byte
		if end < 0 {
			line = text[offset:]
		} else {
			line = text[offset : offset+end]
		}

		if i := l.match(line); i >= 0 {
			return model.AnchorMatch{
				Variant: l.names[i],
				Index:   i,
				Offset:  offset,
				Line:    lineNo,
			}, true
		}

		if end < 0 {
			break
		}
		offset += end + 1
	}
	return model.AnchorMatch{}, false
}

func (l *Locator) match(line []byte) int {
	for i, p := range l.prefixes {
		if !bytes.HasPrefix(line, p) {
			continue
		}
		// GETTER must not match GET.
		if len(line) > len(p) && isIdentByte(p[len(p)-1]) && isIdentByte(line[len(p)]) {
			continue
		}
		return i
	}
	return -1
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

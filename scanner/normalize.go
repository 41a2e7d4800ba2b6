package scanner

import (
	"strings"

	"github.com/zeebo/xxh3"
)

// NormalizeSource strips comments and collapses whitespace so that two
// fragments differing only in layout or commentary hash identically. This
// is exact-duplicate detection: a single changed token produces a different
// hash. Comment markers inside string literals ('...', "..." or backticks)
// are content, not comments, and are kept.
func NormalizeSource(source string) string {
	var b strings.Builder
	n := len(source)

	for i := 0; i < n; {
		c := source[i]
		switch {
		case c == '/' && i+1 < n && source[i+1] == '/':
			for i < n && source[i] != '\n' {
				i++
			}
		case c == '#':
			for i < n && source[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && source[i+1] == '*':
			i += 2
			for i+1 < n && !(source[i] == '*' && source[i+1] == '/') {
				i++
			}
			if i+1 < n {
				i += 2
			} else {
				i = n
			}
			b.WriteByte(' ')
		case c == '"' || c == '\'' || c == '`':
			i = copyStringLiteral(&b, source, i)
		default:
			b.WriteByte(c)
			i++
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// copyStringLiteral copies a quoted literal verbatim, honoring backslash
// escapes, and returns the index past it. An unterminated single or double
// quoted literal ends at the line break; backticks span lines and take no
// escapes.
func copyStringLiteral(b *strings.Builder, source string, start int) int {
	quote := source[start]
	b.WriteByte(quote)
	i := start + 1
	n := len(source)

	for i < n {
		if source[i] == '\\' && quote != '`' && i+1 < n {
			b.WriteByte(source[i])
			b.WriteByte(source[i+1])
			i += 2
			continue
		}
		b.WriteByte(source[i])
		if source[i] == quote {
			return i + 1
		}
		if source[i] == '\n' && quote != '`' {
			return i + 1
		}
		i++
	}
	return n
}

// NormalizedHash hashes the normalized form of source.
func NormalizedHash(source string) uint64 {
	return xxh3.HashString(NormalizeSource(source))
}

// TokenCount counts whitespace-separated tokens after normalization. Used
// to keep trivially small bodies out of duplicate analysis.
func TokenCount(source string) int {
	normalized := NormalizeSource(source)
	if normalized == "" {
		return 0
	}
	return len(strings.Fields(normalized))
}

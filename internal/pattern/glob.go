package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// compileGlob translates a wildcard expression into an anchored regexp:
// '*' matches any run of characters, '?' matches exactly one. All other
// characters match literally. The expression is lowercased first so the
// resulting matcher is case-insensitive against lowercased input.
func compileGlob(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}
	var b strings.Builder
	b.WriteString("^")
	for _, r := range strings.ToLower(expr) {
		switch {
		case r == '*':
			b.WriteString(".*")
		case r == '?':
			b.WriteString(".")
		case unicode.IsControl(r):
			return nil, fmt.Errorf("control character in expression")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("malformed expression %q: %w", expr, err)
	}
	return re, nil
}

// hasWildcard reports whether expr contains a glob glyph.
func hasWildcard(expr string) bool {
	return strings.ContainsAny(expr, "*?")
}

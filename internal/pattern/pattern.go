// Package pattern compiles user search queries into filename matchers.
//
// A query is matched case-insensitively anywhere inside a candidate name.
// The only wildcard is '*', which stands for any run of characters; every
// other character, including regular expression metacharacters, is literal.
package pattern

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxQueryLength is the number of characters kept from a query.
// Longer queries are truncated, never rejected.
const MaxQueryLength = 256

// Wildcard matches zero or more arbitrary characters.
const Wildcard = "*"

// Pattern is a compiled, case-insensitive query.
type Pattern struct {
	raw string
	re  *regexp.Regexp
	nfc *regexp.Regexp // nil when the query is already NFC
}

// Compile builds a Pattern from a raw query. Any string is a valid query.
func Compile(raw string) *Pattern {
	q := strings.ToValidUTF8(strings.TrimSpace(raw), string(utf8.RuneError))
	q = truncate(q, MaxQueryLength)

	p := &Pattern{
		raw: q,
		re:  regexp.MustCompile(toRegexp(q)),
	}
	if n := norm.NFC.String(q); n != q {
		p.nfc = regexp.MustCompile(toRegexp(n))
	}
	return p
}

// toRegexp quotes every character and re-opens the wildcard.
// (?s) lets the wildcard span newlines, which are legal in file names.
func toRegexp(q string) string {
	parts := strings.Split(q, Wildcard)
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return "(?is)" + strings.Join(parts, ".*")
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Raw returns the effective query after trimming and truncation.
func (p *Pattern) Raw() string {
	return p.raw
}

// MatchString reports whether s contains a substring matching the pattern.
func (p *Pattern) MatchString(s string) bool {
	return p.re.MatchString(s)
}

// MatchName reports whether a file name matches. Besides the literal name it
// also tries the NFC forms of name and query, so decomposed and precomposed
// spellings of the same name are interchangeable.
func (p *Pattern) MatchName(name string) bool {
	if p.MatchString(name) {
		return true
	}
	n := norm.NFC.String(name)
	if n != name && p.MatchString(n) {
		return true
	}
	return p.nfc != nil && p.nfc.MatchString(n)
}

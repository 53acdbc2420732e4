// Package slug derives URL-safe identifiers from display names and resolves
// them to values that are unique in a backing store.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength bounds generated slugs, suffix included.
const MaxLength = 200

var pattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Letters without a canonical decomposition, plus symbols that read as words.
var replacer = strings.NewReplacer(
	"&", " and ",
	"@", " at ",
	"'", "",
	"’", "",
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"ł", "l",
	"đ", "d",
	"þ", "th",
)

// Slugify lowercases s, folds accented letters to ASCII and collapses every run
// of other characters into a single hyphen. The result is either empty or
// matches Valid.
func Slugify(s string) string {
	s = strings.ToLower(s)

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = replacer.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	hyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
			continue
		}
		hyphen = true
	}

	return truncate(b.String(), MaxLength)
}

// Valid reports whether s is a well formed slug.
func Valid(s string) bool {
	return len(s) <= MaxLength && pattern.MatchString(s)
}

// truncate cuts s to at most n bytes without leaving a trailing hyphen.
// Slugify output is ASCII, so bytes and runes coincide.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}

package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slugify turns a display name into a URL slug: accents are folded, letters
// lowercased, whitespace, '-' and '_' become single hyphens and everything
// else outside [a-z0-9] is dropped. Slugify(Slugify(s)) == Slugify(s).
func Slugify(name string) string {
	// transform chains keep state, so one is built per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	sep := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			sep = true
		}
	}
	return b.String()
}

// ValidSlug reports whether s is at least two characters of lowercase
// alphanumerics joined by single hyphens.
func ValidSlug(s string) bool {
	return len(s) >= 2 && slugPattern.MatchString(s)
}

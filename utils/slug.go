package utils

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
)

// Slugify turns a display label such as "Science Fiction" or "Comédie" into a
// URL-safe identifier ("science-fiction", "comedie").
func Slugify(label string) string {
	ascii := unidecode.Unidecode(strings.TrimSpace(label))

	var b strings.Builder
	b.Grow(len(ascii))
	dash := false
	for _, r := range strings.ToLower(ascii) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

package forms

import "strings"

// GenerateSlug derives a URL-safe identifier from a title: lower-case, only
// [a-z0-9] kept, and every run of spaces or hyphens collapsed into a single
// hyphen with none at either end. Hyphens survive, so the function is
// idempotent: GenerateSlug(GenerateSlug(x)) == GenerateSlug(x).
func GenerateSlug(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == ' ' || r == '-':
			pendingHyphen = true
		}
	}
	return b.String()
}

// ValidSlug reports whether s is already in canonical slug form.
func ValidSlug(s string) bool {
	return s != "" && GenerateSlug(s) == s
}

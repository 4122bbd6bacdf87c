package symtab

import "strings"

// Slug derives the URL-safe identifier form of heading text or a choice
// label: lowercase, alphanumeric runs joined by single hyphens. Identifier
// stability across unrelated edits depends on this function never changing
// behavior.
func Slug(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		alnum := r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
		if !alnum {
			if b.Len() > 0 {
				pendingHyphen = true
			}
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Package slug derives URL-safe identifiers from human-readable names.
package slug

import "strings"

// Make normalises a name into its slug: lower-cased, runs of whitespace
// collapsed into single hyphens, everything outside [a-z0-9-] dropped.
// The derivation is deterministic, so two names that normalise to the same
// slug collide — the repositories treat that as a uniqueness conflict.
//
//	Make("Electronics & Gadgets") == "electronics-gadgets"
func Make(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '-' || r == '_':
			pendingHyphen = true
		default:
			// punctuation such as '&' vanishes entirely
		}
	}

	return b.String()
}

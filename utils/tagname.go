package utils

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// characters never allowed in a stored tag name
const disallowedTagChars = "!@#$%^&*()+={}[]|\\:;\"'<>,.?/~`"

// NormalizeTagName canonicalizes a user-supplied tag name: surrounding
// whitespace is trimmed, inner whitespace runs collapse to underscores and
// blocklisted punctuation is stripped. Case is preserved. Returns "" when
// nothing usable remains.
func NormalizeTagName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = whitespaceRun.ReplaceAllString(name, "_")

	var b strings.Builder
	for _, c := range name {
		if !strings.ContainsRune(disallowedTagChars, c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}

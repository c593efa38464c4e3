package parsing

import (
	"regexp"
	"strings"
)

const maxNameRunes = 200

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	nameReplacer = strings.NewReplacer(
		"<", "",
		">", "",
		":", "",
		`"`, "'",
		"/", "-",
		`\`, "-",
		"|", "-",
		"?", "",
		"*", "",
	)
)

// SanitizeFilename makes s safe to use as a single path element.
//
// Reserved characters are dropped or replaced, whitespace runs collapse to one
// space, leading/trailing separators are trimmed, and the result is capped at 200 runes.
func SanitizeFilename(s string) string {
	s = nameReplacer.Replace(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.Trim(s, " -_,.")

	if r := []rune(s); len(r) > maxNameRunes {
		s = strings.TrimRight(string(r[:maxNameRunes]), " -_,.")
	}
	if s == "" {
		return "untitled"
	}
	return s
}

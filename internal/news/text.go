package news

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxDescriptionLength is the cap, in runes, applied to cleaned descriptions.
const MaxDescriptionLength = 500

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	entityReplacer = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
)

// CleanText strips markup, decodes the common entities, collapses whitespace
// and trims. Decoding can expose new tags or entities, so the steps repeat
// until the text stops changing; the result is a fixed point of CleanText.
func CleanText(s string) string {
	for {
		next := cleanOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

func cleanOnce(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = entityReplacer.Replace(s)
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanDescription is CleanText capped at MaxDescriptionLength runes.
func CleanDescription(s string) string {
	return CleanText(Truncate(CleanText(s), MaxDescriptionLength))
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

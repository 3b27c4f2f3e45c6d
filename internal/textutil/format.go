package textutil

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const ellipsis = "..."

var (
	sentenceRe    = regexp.MustCompile(`(?m)[^.!?\n]+(?:[.!?]+|$)`)
	unsafeNameRe  = regexp.MustCompile(`[<>:"/\\|?*]`)
	underscoresRe = regexp.MustCompile(`_+`)
)

// Truncate caps s at maxLen runes, marking a cut with an ellipsis that
// counts toward the limit.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= len(ellipsis) {
		return string([]rune(s)[:maxLen])
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:maxLen-len(ellipsis)]), " ") + ellipsis
}

// TitleCase upper-cases the first letter of every word
func TitleCase(s string) string {
	// cases.Caser is stateful, so one is built per call.
	return cases.Title(language.English).String(s)
}

// Sentences splits text into trimmed sentences, keeping terminal punctuation
func Sentences(text string) []string {
	var out []string
	for _, m := range sentenceRe.FindAllString(text, -1) {
		if s := strings.TrimSpace(m); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Preview builds a short lead-in from the first sentences of content
func Preview(content string, maxLen int) string {
	var parts []string
	length := 0
	for _, s := range Sentences(content) {
		if utf8.RuneCountInString(s) <= 10 {
			continue
		}
		parts = append(parts, s)
		length += utf8.RuneCountInString(s) + 1
		if length > 150 {
			break
		}
	}
	if len(parts) == 0 {
		return Truncate(strings.TrimSpace(content), maxLen)
	}
	return Truncate(strings.Join(parts, " "), maxLen)
}

// SafeFilename replaces characters that are unsafe in file names and bounds the length
func SafeFilename(name string) string {
	safe := unsafeNameRe.ReplaceAllString(name, "_")
	safe = whitespaceRe.ReplaceAllString(safe, "_")
	safe = underscoresRe.ReplaceAllString(safe, "_")
	if utf8.RuneCountInString(safe) > 100 {
		ext := filepath.Ext(safe)
		base := []rune(strings.TrimSuffix(safe, ext))
		if len(base) > 95 {
			base = base[:95]
		}
		safe = string(base) + ext
	}
	return safe
}

// Package textutil holds the text primitives shared by every pipeline stage:
// cleaning, keyword extraction and lexical similarity.
package textutil

import (
	"regexp"
	"strings"
)

var (
	pageNumberLineRe = regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*$`)
	pageOfRe         = regexp.MustCompile(`(?mi)^[ \t]*page[ \t]+\d+[ \t]+of[ \t]+\d+[ \t]*`)
	hyphenBreakRe    = regexp.MustCompile(`(\w)-[ \t]*\r?\n[ \t]*(\w)`)
	whitespaceRe     = regexp.MustCompile(`[\s\v\x{0085}\p{Z}]+`)
	inlineSpaceRe    = regexp.MustCompile(`[ \t\f\v\r\x{0085}\p{Zs}]+`)
	blankLinesRe     = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
)

var quoteReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`,
	"‘", "'", "’", "'", "‚", "'", "′", "'",
)

// stripArtifacts removes page furniture and rejoins words hyphenated across lines
func stripArtifacts(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = pageOfRe.ReplaceAllString(text, "")
	text = pageNumberLineRe.ReplaceAllString(text, "")
	text = hyphenBreakRe.ReplaceAllString(text, "$1$2")
	return quoteReplacer.Replace(text)
}

// Clean normalizes free text into a single line: page artifacts are removed,
// hyphenated line breaks are rejoined, quotes are normalized and every
// whitespace run becomes one space.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = stripArtifacts(text)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// NormalizePage cleans page text like Clean but keeps its line structure.
// Spaces inside a line are collapsed and consecutive blank lines are reduced
// to one, so headings and paragraph breaks survive for section extraction.
func NormalizePage(text string) string {
	if text == "" {
		return ""
	}
	text = stripArtifacts(text)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpaceRe.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

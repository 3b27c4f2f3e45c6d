package processor

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/textutil"
)

var (
	contentBlockTitleRe = regexp.MustCompile(`^Content Block \d+$`)
	filenameSepRe       = regexp.MustCompile(`[_\-\s]+`)
)

type compiledTheme struct {
	Theme
	matchers []*regexp.Regexp
}

func compileThemes(themes []Theme) []compiledTheme {
	out := make([]compiledTheme, len(themes))
	for i, th := range themes {
		out[i].Theme = th
		for _, kw := range th.Keywords {
			out[i].matchers = append(out[i].matchers, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)))
		}
	}
	return out
}

// refineTitle replaces weak raw titles with something descriptive
func (e *SectionExtractor) refineTitle(raw, content, document string, pc *models.PersonaContext) string {
	raw = strings.TrimSpace(raw)
	if e.isDescriptive(raw) {
		return raw
	}
	if t := titleFromContent(content); t != "" {
		return t
	}
	if t := e.themeTitle(strings.ToLower(content), pc); t != "" {
		return t
	}
	return e.filenameTitle(document)
}

func (e *SectionExtractor) isDescriptive(title string) bool {
	n := utf8.RuneCountInString(title)
	if n < 10 || n > 80 || strings.HasSuffix(title, ":") || contentBlockTitleRe.MatchString(title) {
		return false
	}
	lower := strings.ToLower(title)
	for _, g := range e.cfg.GenericTitles {
		if lower == g {
			return false
		}
	}
	for _, p := range e.cfg.GenericPhrases {
		if strings.Contains(lower, p) {
			return false
		}
	}
	return true
}

// titleFromContent picks a short capitalized line among the first ten lines
// that is followed by a line of real text.
func titleFromContent(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for i := 0; i+1 < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		n := utf8.RuneCountInString(line)
		if n < 10 || n > 60 || len(strings.Fields(line)) > 8 {
			continue
		}
		first, _ := utf8.DecodeRuneInString(line)
		if !unicode.IsUpper(first) || strings.ContainsAny(line[len(line)-1:], ".!?:;,") {
			continue
		}
		if utf8.RuneCountInString(strings.TrimSpace(lines[i+1])) > 20 {
			return line
		}
	}
	return ""
}

// themeTitle scores the content against the theme table and formats the best theme
func (e *SectionExtractor) themeTitle(contentLower string, pc *models.PersonaContext) string {
	var personaText string
	var boostedByIntent []string
	if pc != nil {
		personaText = strings.ToLower(pc.Role + " " + pc.Domain)
		boostedByIntent = e.cfg.IntentThemeBoosts[pc.JobIntent]
	}

	best, bestScore := "", 1.0
	for _, th := range e.themes {
		hits := 0
		for _, m := range th.matchers {
			if m.MatchString(contentLower) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		score := float64(hits * 2)
		if score > 2 {
			score *= 1.2
		}
		for _, boost := range e.cfg.RoleThemeBoosts {
			if personaText != "" && strings.Contains(personaText, boost.Key) && containsString(boost.Themes, th.Name) {
				score *= 1.5
			}
		}
		if containsString(boostedByIntent, th.Name) {
			score *= 1.3
		}
		if score > bestScore {
			best, bestScore = th.Title, score
		}
	}
	return best
}

// filenameTitle turns a document name like "learn_acrobat-forms.pdf" into a title
func (e *SectionExtractor) filenameTitle(document string) string {
	base := filepath.Base(document)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSpace(filenameSepRe.ReplaceAllString(base, " "))
	for _, prefix := range e.cfg.FilenamePrefixes {
		if len(base) > len(prefix) && strings.EqualFold(base[:len(prefix)], prefix) {
			base = base[len(prefix):]
			break
		}
	}
	if base == "" || base == "." {
		return "Content Section"
	}
	return textutil.TitleCase(base)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

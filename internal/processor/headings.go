package processor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	markdownHeadingRe = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*#*$`)
	allCapsRe         = regexp.MustCompile(`^[A-Z0-9][A-Z0-9 &/,'()\-:]+$`)
	numberedHeadingRe = regexp.MustCompile(`^(?:\d+(?:\.\d+)*\.?|[IVXLC]+\.)\s+([A-Z].+)$`)
	colonHeadingRe    = regexp.MustCompile(`^[A-Z][^:.!?]{2,80}:$`)
	bulletHeadingRe   = regexp.MustCompile(`^[•▪◦●\-\*–]\s*([A-Z][A-Za-z0-9 ,&'/()\-]{4,60})$`)
	howToRe           = regexp.MustCompile(`(?i)^how\s+to\s+\S.{2,80}$`)
	topicSuffixRe     = regexp.MustCompile(`(?i)^[A-Za-z][A-Za-z0-9 &/'\-]{2,60}?\s+(?:overview|guide|analysis|summary|introduction|tips|checklist|basics|essentials)$`)
	listMarkerRe      = regexp.MustCompile(`^\s*(?:[•▪◦●\-\*–]|\d+[.)]|[a-z][.)])\s+`)
	nonHeadingRe      = regexp.MustCompile(`(?i)^[\d\s.,/:-]+$|https?://|www\.|\S+@\S+\.\S+`)
)

// minorWords may stay lower-case inside a title-case heading
var minorWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {}, "in": {}, "on": {},
	"for": {}, "to": {}, "with": {}, "at": {}, "by": {}, "from": {}, "vs": {}, "&": {},
}

// headingRule recognizes one heading style and returns the heading title
type headingRule struct {
	name string
	// strict rules only accept lines followed by substantial, non-list content
	strict bool
	match  func(line string) (string, bool)
}

func submatchRule(re *regexp.Regexp) func(string) (string, bool) {
	return func(line string) (string, bool) {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return "", false
		}
		return strings.TrimSpace(m[1]), true
	}
}

func wholeLineRule(re *regexp.Regexp) func(string) (string, bool) {
	return func(line string) (string, bool) {
		if !re.MatchString(line) {
			return "", false
		}
		return line, true
	}
}

func matchAllCaps(line string) (string, bool) {
	if !allCapsRe.MatchString(line) {
		return "", false
	}
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return line, letters >= 3
}

func matchTitleCase(line string) (string, bool) {
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > 8 {
		return "", false
	}
	first, _ := utf8.DecodeRuneInString(line)
	if !unicode.IsUpper(first) || strings.ContainsAny(line[len(line)-1:], ".!?,;") {
		return "", false
	}
	significant, capitalized := 0, 0
	for _, w := range words {
		lw := strings.ToLower(w)
		if _, ok := minorWords[lw]; ok {
			continue
		}
		significant++
		r, _ := utf8.DecodeRuneInString(w)
		if unicode.IsUpper(r) || unicode.IsDigit(r) {
			capitalized++
		}
	}
	if significant == 0 || float64(capitalized)/float64(significant) < 0.6 {
		return "", false
	}
	return line, true
}

func defaultHeadingRules() []headingRule {
	return []headingRule{
		{name: "markdown", match: submatchRule(markdownHeadingRe)},
		{name: "all_caps", match: matchAllCaps},
		{name: "numbered", match: submatchRule(numberedHeadingRe)},
		{name: "colon", match: wholeLineRule(colonHeadingRe)},
		{name: "bullet", strict: true, match: submatchRule(bulletHeadingRe)},
		{name: "how_to", match: wholeLineRule(howToRe)},
		{name: "topic_suffix", match: wholeLineRule(topicSuffixRe)},
		{name: "title_case", match: matchTitleCase},
	}
}

type heading struct {
	line  int
	title string
}

// findHeadings returns the accepted headings of a page in line order
func (e *SectionExtractor) findHeadings(lines []string) []heading {
	var found []heading
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		for _, rule := range e.rules {
			title, ok := rule.match(line)
			if !ok {
				continue
			}
			if e.acceptHeading(title, lines, i, rule.strict) {
				found = append(found, heading{line: i, title: title})
				break
			}
		}
	}
	return found
}

// acceptHeading validates a heading candidate found on line idx
func (e *SectionExtractor) acceptHeading(title string, lines []string, idx int, strict bool) bool {
	n := utf8.RuneCountInString(title)
	if n < 5 || n > 100 {
		return false
	}
	if strings.HasSuffix(title, ".") || nonHeadingRe.MatchString(title) {
		return false
	}

	words := strings.Fields(title)
	longWord, stops := false, 0
	for _, w := range words {
		clean := strings.ToLower(strings.Trim(w, ".,;:!?()\"'-#*"))
		if utf8.RuneCountInString(clean) > 3 {
			longWord = true
		}
		if _, minor := minorWords[clean]; minor || e.cfg.StopWords.Has(clean) {
			stops++
		}
	}
	if !longWord || stops*2 > len(words) {
		return false
	}

	substantial, nextIsList := e.followedBySubstance(lines, idx)
	if strict {
		return substantial && !nextIsList
	}
	first, _ := utf8.DecodeRuneInString(title)
	plausible := len(words) <= 8 && unicode.IsUpper(first)
	return plausible || substantial
}

// followedBySubstance reports whether one of the next few non-empty lines is
// longer than 20 characters or a list item, and whether the first of them is a list item.
func (e *SectionExtractor) followedBySubstance(lines []string, idx int) (substantial, firstIsList bool) {
	seen := 0
	for j := idx + 1; j < len(lines) && seen < e.cfg.LookaheadLines; j++ {
		next := strings.TrimSpace(lines[j])
		if next == "" {
			continue
		}
		isList := listMarkerRe.MatchString(next)
		if seen == 0 {
			firstIsList = isList
		}
		seen++
		if utf8.RuneCountInString(next) > 20 || isList {
			substantial = true
		}
	}
	return substantial, firstIsList
}

// Package persona turns a free-text persona and job description into the
// structured context that drives section extraction and ranking.
package persona

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/textutil"
)

// phraseMatcher matches any of a list of words or phrases at a word start
type phraseMatcher struct {
	re *regexp.Regexp
}

func newPhraseMatcher(phrases []string) phraseMatcher {
	if len(phrases) == 0 {
		return phraseMatcher{}
	}
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(p))
	}
	return phraseMatcher{re: regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)`)}
}

// Match reports whether lower-cased text contains one of the phrases
func (m phraseMatcher) Match(text string) bool {
	return m.re != nil && m.re.MatchString(text)
}

type intentMatcher struct {
	intent  models.JobIntent
	matcher phraseMatcher
}

type categoryMatcher struct {
	triggers phraseMatcher
	topics   []phraseMatcher
}

// Analyzer builds PersonaContexts. It is safe for concurrent use.
type Analyzer struct {
	cfg           Config
	intents       []intentMatcher
	categories    []categoryMatcher
	comprehensive phraseMatcher
	overview      phraseMatcher
	prepVerbs     phraseMatcher
	learnVerbs    phraseMatcher
	roleNouns     map[string]struct{}
	log           zerolog.Logger
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithLogger sets the analyzer logger
func WithLogger(l zerolog.Logger) Option {
	return func(a *Analyzer) {
		a.log = l.With().Str("component", "persona").Logger()
	}
}

// New creates an Analyzer with the default tables
func New(opts ...Option) *Analyzer {
	return NewAnalyzer(DefaultConfig(), opts...)
}

// NewAnalyzer creates an Analyzer over the given tables
func NewAnalyzer(cfg Config, opts ...Option) *Analyzer {
	if cfg.StopWords == nil {
		cfg.StopWords = textutil.DefaultStopWords()
	}
	a := &Analyzer{
		cfg:           cfg,
		comprehensive: newPhraseMatcher(cfg.ComprehensiveCue),
		overview:      newPhraseMatcher(cfg.OverviewCue),
		prepVerbs:     newPhraseMatcher([]string{"prepare", "create", "write"}),
		learnVerbs:    newPhraseMatcher([]string{"understand", "learn", "study"}),
		roleNouns:     make(map[string]struct{}, len(cfg.RoleNouns)),
		log:           zerolog.Nop(),
	}
	for _, rule := range cfg.IntentRules {
		a.intents = append(a.intents, intentMatcher{intent: rule.Intent, matcher: newPhraseMatcher(rule.Triggers)})
	}
	for _, c := range cfg.Categories {
		cm := categoryMatcher{triggers: newPhraseMatcher(c.Triggers)}
		for _, t := range c.Topics {
			cm.topics = append(cm.topics, newPhraseMatcher([]string{t}))
		}
		a.categories = append(a.categories, cm)
	}
	for _, n := range cfg.RoleNouns {
		a.roleNouns[n] = struct{}{}
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// IntentRules returns the intent trigger table the analyzer was built with
func (a *Analyzer) IntentRules() []IntentRule {
	return a.cfg.IntentRules
}

// Analyze derives the persona context for one request. Empty persona or job
// text is the only failure.
func (a *Analyzer) Analyze(persona, job string) (*models.PersonaContext, error) {
	persona = textutil.Clean(persona)
	job = textutil.Clean(job)
	if persona == "" {
		return nil, &models.InputError{Field: "persona", Reason: "must not be empty"}
	}
	if job == "" {
		return nil, &models.InputError{Field: "job", Reason: "must not be empty"}
	}

	personaLower := strings.ToLower(persona)
	jobLower := strings.ToLower(job)
	category := a.matchCategory(personaLower)

	role := a.role(persona, personaLower)
	intent := a.intent(jobLower)
	pc := &models.PersonaContext{
		Role:             role,
		Domain:           a.domain(persona, personaLower, role),
		ExpertiseAreas:   a.expertise(personaLower),
		JobKeywords:      capList(dedupe(a.cfg.StopWords.ExtractKeywords(job, 15)), MaxJobKeywords),
		JobIntent:        intent,
		PriorityTopics:   a.priorityTopics(persona+" "+job, category),
		RelevantSections: a.relevantSections(intent, category),
		AnalysisDepth:    a.depth(jobLower),
	}

	a.log.Debug().
		Str("role", pc.Role).
		Str("domain", pc.Domain).
		Str("intent", string(pc.JobIntent)).
		Str("depth", string(pc.AnalysisDepth)).
		Strs("priority_topics", pc.PriorityTopics).
		Msg("persona analyzed")

	return pc, nil
}

func (a *Analyzer) role(persona, personaLower string) string {
	for _, re := range a.cfg.RolePatterns {
		if m := re.FindString(personaLower); m != "" {
			return textutil.TitleCase(m)
		}
	}
	for _, word := range strings.Fields(persona) {
		w := strings.ToLower(strings.Trim(word, ".,;:!?()\"'"))
		if len(w) > 3 && !a.cfg.StopWords.Has(w) {
			return textutil.TitleCase(w)
		}
	}
	return "Professional"
}

func (a *Analyzer) domain(persona, personaLower, role string) string {
	roleWords := make(map[string]struct{})
	for _, w := range textutil.Tokens(role) {
		roleWords[w] = struct{}{}
	}
	for _, kw := range a.cfg.StopWords.ExtractKeywords(persona, 10) {
		if _, ok := roleWords[kw]; ok {
			continue
		}
		if _, ok := a.roleNouns[kw]; ok {
			continue
		}
		return kw
	}
	for _, re := range a.cfg.DomainPatterns {
		m := re.FindStringSubmatch(personaLower)
		if len(m) < 2 {
			continue
		}
		field := strings.TrimSpace(m[1])
		if n := len(strings.Fields(field)); n > 0 && n <= 3 {
			return field
		}
	}
	return "general"
}

func (a *Analyzer) expertise(personaLower string) []string {
	var areas []string
	for _, re := range a.cfg.ExpertisePattern {
		for _, m := range re.FindAllStringSubmatch(personaLower, -1) {
			area := strings.TrimSpace(m[1])
			if len(area) > 3 {
				areas = append(areas, textutil.TitleCase(area))
			}
		}
	}
	return capList(dedupe(areas), MaxExpertiseAreas)
}

func (a *Analyzer) intent(jobLower string) models.JobIntent {
	for _, im := range a.intents {
		if im.matcher.Match(jobLower) {
			return im.intent
		}
	}
	switch {
	case a.prepVerbs.Match(jobLower):
		return models.IntentPreparation
	case a.learnVerbs.Match(jobLower):
		return models.IntentLearning
	default:
		return models.IntentAnalysis
	}
}

// matchCategory returns the index of the first domain category whose triggers appear, or -1
func (a *Analyzer) matchCategory(personaLower string) int {
	for i, c := range a.categories {
		if c.triggers.Match(personaLower) {
			return i
		}
	}
	return -1
}

func (a *Analyzer) priorityTopics(combined string, category int) []string {
	topics := a.cfg.StopWords.ExtractKeywords(combined, 15)

	combinedLower := strings.ToLower(combined)
	if category >= 0 {
		for i, m := range a.categories[category].topics {
			if m.Match(combinedLower) {
				topics = append(topics, a.cfg.Categories[category].Topics[i])
			}
		}
	}
	topics = append(topics, a.cfg.StopWords.ContentWords(combined)...)

	filtered := make([]string, 0, len(topics))
	for _, t := range dedupe(topics) {
		if len(t) > 2 {
			filtered = append(filtered, t)
		}
	}
	return capList(filtered, MaxPriorityTopics)
}

func (a *Analyzer) relevantSections(intent models.JobIntent, category int) []string {
	sections, ok := a.cfg.IntentSections[intent]
	if !ok {
		sections = []string{"introduction", "results", "conclusion"}
	}
	all := append([]string(nil), sections...)
	if category >= 0 {
		all = append(all, a.cfg.Categories[category].Sections...)
	}
	all = append(all, a.cfg.UniversalSection...)
	return capList(dedupe(all), MaxRelevantSections)
}

func (a *Analyzer) depth(jobLower string) models.AnalysisDepth {
	switch {
	case a.comprehensive.Match(jobLower):
		return models.DepthComprehensive
	case a.overview.Match(jobLower):
		return models.DepthOverview
	default:
		return models.DepthFocused
	}
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

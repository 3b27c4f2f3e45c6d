// Package ranking scores extracted sections against a persona context and
// selects a diverse top subset across documents.
package ranking

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/textutil"
)

// Engine computes multi-factor scores for a batch of sections
type Engine struct {
	cfg      Config
	triggers map[models.JobIntent]*regexp.Regexp
	log      zerolog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l.With().Str("component", "ranking").Logger()
	}
}

// NewEngine creates a ranking engine over the given tables
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		triggers: make(map[models.JobIntent]*regexp.Regexp, len(cfg.IntentRules)),
		log:      zerolog.Nop(),
	}
	for _, rule := range cfg.IntentRules {
		quoted := make([]string, len(rule.Triggers))
		for i, t := range rule.Triggers {
			quoted[i] = regexp.QuoteMeta(t)
		}
		e.triggers[rule.Intent] = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)`)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine tables
func (e *Engine) Config() Config {
	return e.cfg
}

// Rank scores every section against the whole batch and returns them sorted
// by final score, highest first, with ranks 1..N. Equal scores keep their
// input order.
func (e *Engine) Rank(sections []models.Section, pc *models.PersonaContext) []models.RankedSection {
	if len(sections) == 0 {
		return []models.RankedSection{}
	}
	if pc == nil {
		pc = &models.PersonaContext{}
	}

	diversity := diversityBonuses(sections)
	ranked := make([]models.RankedSection, len(sections))
	for i, s := range sections {
		ranked[i] = e.score(s, diversity[i], pc)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})
	assignRanks(ranked)

	e.log.Debug().
		Int("sections", len(ranked)).
		Float64("top_score", ranked[0].FinalScore).
		Msg("sections ranked")
	return ranked
}

func (e *Engine) score(s models.Section, diversity float64, pc *models.PersonaContext) models.RankedSection {
	lower := strings.ToLower(s.Content)

	coverage := e.coverage(lower, pc.PriorityTopics)
	typeScore := e.typeScore(s.Type, pc.JobIntent)
	length := e.lengthScore(s.WordCount)
	boost := e.priorityBoost(lower, s.Type, pc)

	w := e.cfg.Weights
	final := s.Relevance*w.Relevance +
		boost +
		diversity*w.Diversity +
		coverage*w.Coverage +
		typeScore*w.SectionType +
		length*w.Length

	return models.RankedSection{
		Section:        s,
		DiversityBonus: diversity,
		CoverageScore:  coverage,
		FinalScore:     final,
		Factors: map[string]float64{
			models.FactorRelevance:     s.Relevance,
			models.FactorDiversity:     diversity,
			models.FactorCoverage:      coverage,
			models.FactorSectionType:   typeScore,
			models.FactorIntentBonus:   e.intentBonus(s.Type, pc.JobIntent),
			models.FactorLength:        length,
			models.FactorPriorityBoost: boost,
		},
	}
}

// diversityBonuses returns 1 - mean similarity to every other section
func diversityBonuses(sections []models.Section) []float64 {
	out := make([]float64, len(sections))
	if len(sections) == 1 {
		out[0] = 1.0
		return out
	}

	sets := make([]textutil.TokenSet, len(sections))
	for i, s := range sections {
		sets[i] = textutil.NewTokenSet(s.Content)
	}
	sums := make([]float64, len(sections))
	for i := range sets {
		for j := i + 1; j < len(sets); j++ {
			sim := sets[i].Jaccard(sets[j])
			if sections[i].Content == sections[j].Content && strings.TrimSpace(sections[i].Content) != "" {
				sim = 1
			}
			sums[i] += sim
			sums[j] += sim
		}
	}
	others := float64(len(sections) - 1)
	for i := range out {
		out[i] = 1 - sums[i]/others
	}
	return out
}

// coverage is the fraction of priority topics found in the body
func (e *Engine) coverage(lower string, topics []string) float64 {
	if len(topics) == 0 {
		return 0.5
	}
	matched := countMatches(lower, topics)
	score := float64(matched) / float64(len(topics))
	if matched > 1 {
		score *= e.cfg.CoverageLift
	}
	return min(score, 1.0)
}

func (e *Engine) typeScore(t models.SectionType, intent models.JobIntent) float64 {
	base, ok := e.cfg.TypeImportance[t]
	if !ok {
		base = e.cfg.DefaultImportance
	}
	return base + e.intentBonus(t, intent)
}

// intentBonus favours types listed early in the intent's preferences
func (e *Engine) intentBonus(t models.SectionType, intent models.JobIntent) float64 {
	prefs := e.cfg.IntentPreferences[intent]
	for i, p := range prefs {
		if p == t {
			return e.cfg.IntentBonus * (1 - float64(i)/float64(len(prefs)))
		}
	}
	return 0
}

func (e *Engine) lengthScore(words int) float64 {
	switch {
	case words < e.cfg.MinWords:
		return float64(words) / float64(e.cfg.MinWords)
	case words <= e.cfg.MaxWords:
		return 1.0
	default:
		return 1 - min(0.5, float64(words-e.cfg.MaxWords)/1000)
	}
}

// priorityBoost rewards strong topical and intent matches. It is added to
// the final score without weighting.
func (e *Engine) priorityBoost(lower string, t models.SectionType, pc *models.PersonaContext) float64 {
	boost := min(e.cfg.MaxTopicBoost, e.cfg.TopicBoost*float64(countMatches(lower, pc.PriorityTopics)))
	boost += min(e.cfg.MaxKeyword, e.cfg.KeywordBoost*float64(countMatches(lower, pc.JobKeywords)))
	if re, ok := e.triggers[pc.JobIntent]; ok && re.MatchString(lower) {
		boost += e.cfg.IntentWord
	}
	if pc.PrefersSection(t) {
		boost += e.cfg.TypeMatch
	}
	return min(boost, e.cfg.MaxBoost)
}

func countMatches(lower string, terms []string) int {
	n := 0
	for _, t := range terms {
		if t != "" && strings.Contains(lower, strings.ToLower(t)) {
			n++
		}
	}
	return n
}

func assignRanks(ranked []models.RankedSection) {
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
}

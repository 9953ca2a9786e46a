package query

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/devq-ai/ptolemies-sub002/internal/llm"
)

const (
	baselineEntityConfidence = 0.9
	degradedEntityConfidence = 0.8
	maxConcepts              = 8
)

var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9\s\-.,?!]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	compoundMarkers = regexp.MustCompile(`\band\b|\bor\b|\bbut also\b`)
)

// Processor turns a raw user string into a ProcessedQuery. It is pure text
// analysis over fixed tables and by contract never returns an error: garbage
// in yields intent=unknown with a semantic-only plan, not a failure.
//
// The embedder is optional. When present it refines entity confidence by
// comparing each entity against the whole query; when absent or failing the
// confidence degrades instead.
type Processor struct {
	embedder      llm.EmbedderClient
	maxExpansions int
	log           zerolog.Logger
}

func NewProcessor(embedder llm.EmbedderClient, maxExpansions int, log zerolog.Logger) *Processor {
	if maxExpansions < 0 {
		maxExpansions = 0
	}
	return &Processor{
		embedder:      embedder,
		maxExpansions: maxExpansions,
		log:           log,
	}
}

// Process runs the full pipeline. hint may be nil (no session context).
func (p *Processor) Process(ctx context.Context, raw string, hint *ContextHint) ProcessedQuery {
	pq := ProcessedQuery{
		OriginalQuery:   raw,
		Intent:          IntentUnknown,
		Complexity:      ComplexitySimple,
		SearchStrategy:  StrategySemanticOnly,
		Entities:        []Entity{},
		Keywords:        []string{},
		Concepts:        []string{},
		ExpandedQueries: []string{},
	}

	normalized := Normalize(raw)
	corrected, changed := correctSpelling(normalized)
	pq.NormalizedQuery = corrected
	pq.SpellCorrected = changed

	if corrected == "" {
		return pq
	}

	intent, score := detectIntent(corrected)
	pq.Intent = intent
	pq.ConfidenceScore = math.Min(float64(score)/3.0, 1.0)

	pq.Entities = p.extractEntities(ctx, corrected)
	pq.Keywords = extractKeywords(corrected)
	pq.Concepts = extractConcepts(pq.Entities, pq.Keywords)
	pq.Complexity = assessComplexity(corrected, len(pq.Entities), len(pq.Concepts))

	strategy := selectStrategy(pq.Intent, pq.Complexity, len(pq.Concepts))
	pq.SearchStrategy = applyContextNudges(strategy, len(pq.Concepts), hint)

	pq.ExpandedQueries = p.expand(corrected, pq.Intent, pq.Entities, pq.Concepts)

	return pq
}

// Normalize lowercases, strips characters outside the whitelist and collapses
// whitespace, keeping the sentence punctuation intent detection relies on.
func Normalize(raw string) string {
	s := strings.ToLower(raw)
	s = disallowedChars.ReplaceAllString(s, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// correctSpelling replaces tokens found in the misspelling table. This is a
// fixed-dictionary correction: anything not in the table passes through.
func correctSpelling(text string) (string, bool) {
	if text == "" {
		return text, false
	}

	tokens := strings.Split(text, " ")
	changed := false
	for i, tok := range tokens {
		core := strings.Trim(tok, ".,?!")
		replacement, ok := misspellings[core]
		if !ok {
			continue
		}
		tokens[i] = strings.Replace(tok, core, replacement, 1)
		changed = true
	}
	return strings.Join(tokens, " "), changed
}

func (p *Processor) extractEntities(ctx context.Context, text string) []Entity {
	entities := []Entity{}
	seen := map[string]bool{}

	for _, tok := range strings.Split(text, " ") {
		value := strings.Trim(tok, ".,?!")
		etype, ok := entityVocabulary[value]
		if !ok || seen[value] {
			continue
		}
		seen[value] = true
		entities = append(entities, Entity{
			Type:       etype,
			Value:      value,
			Confidence: baselineEntityConfidence,
		})
	}

	if p.embedder != nil && len(entities) > 0 {
		p.refineConfidence(ctx, text, entities)
	}
	return entities
}

// refineConfidence scores each entity by cosine similarity against the full
// query. Any helper failure degrades the confidence rather than propagating.
func (p *Processor) refineConfidence(ctx context.Context, text string, entities []Entity) {
	queryVec, err := p.embedder.Embed(ctx, text)
	if err != nil {
		p.log.Debug().Err(err).Msg("entity scoring embed failed, degrading confidence")
		for i := range entities {
			entities[i].Confidence = degradedEntityConfidence
		}
		return
	}

	for i := range entities {
		vec, err := p.embedder.Embed(ctx, entities[i].Value)
		if err != nil {
			entities[i].Confidence = degradedEntityConfidence
			continue
		}
		sim := cosine(queryVec, vec)
		entities[i].Confidence = math.Min(0.99, math.Max(0.6, 0.6+0.4*sim))
	}
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func extractKeywords(text string) []string {
	keywords := []string{}
	for _, tok := range strings.Split(text, " ") {
		word := strings.Trim(tok, ".,?!")
		if word == "" || stopWords[word] {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// extractConcepts unions concept-typed entities with keywords from the
// concept vocabulary, capped at maxConcepts.
func extractConcepts(entities []Entity, keywords []string) []string {
	concepts := []string{}
	seen := map[string]bool{}

	add := func(c string) {
		if len(concepts) >= maxConcepts || seen[c] {
			return
		}
		seen[c] = true
		concepts = append(concepts, c)
	}

	for _, e := range entities {
		if e.Type == EntityConcept {
			add(e.Value)
		}
	}
	for _, kw := range keywords {
		if conceptVocabulary[kw] {
			add(kw)
		}
	}
	return concepts
}

// assessComplexity buckets the query. A coordinating marker short-circuits to
// compound; otherwise an additive score over length, entity and concept
// counts decides.
func assessComplexity(text string, entityCount, conceptCount int) Complexity {
	if compoundMarkers.MatchString(text) {
		return ComplexityCompound
	}

	score := 0
	words := len(strings.Fields(text))
	switch {
	case words > 10:
		score += 2
	case words > 5:
		score++
	}
	switch {
	case entityCount > 3:
		score += 2
	case entityCount > 1:
		score++
	}
	if conceptCount > 2 {
		score++
	}

	switch {
	case score >= 4:
		return ComplexityComplex
	case score >= 2:
		return ComplexityModerate
	default:
		return ComplexitySimple
	}
}

// expand produces up to maxExpansions alternate phrasings: synonym swaps for
// recognized entities and concepts, then an intent-specific suffix.
func (p *Processor) expand(text string, intent Intent, entities []Entity, concepts []string) []string {
	expansions := []string{}
	seen := map[string]bool{text: true}

	add := func(q string) {
		if len(expansions) >= p.maxExpansions || seen[q] {
			return
		}
		seen[q] = true
		expansions = append(expansions, q)
	}

	terms := make([]string, 0, len(entities)+len(concepts))
	for _, e := range entities {
		terms = append(terms, e.Value)
	}
	terms = append(terms, concepts...)

	for _, term := range terms {
		syn, ok := synonyms[term]
		if !ok {
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(term) + `\b`)
		if err != nil {
			continue
		}
		if swapped := re.ReplaceAllString(text, syn); swapped != text {
			add(swapped)
		}
	}

	switch intent {
	case IntentTroubleshoot:
		add(fmt.Sprintf("%s solution fix", text))
	case IntentTutorial:
		add(fmt.Sprintf("%s step by step guide", text))
	case IntentSearch, IntentExplain, IntentCompare, IntentAnalyze,
		IntentSummarize, IntentDefinition, IntentExample, IntentUnknown:
		// no suffix
	}

	return expansions
}

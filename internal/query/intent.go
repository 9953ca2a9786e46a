package query

import "regexp"

// Intent scoring counts pattern occurrences in the normalized text. The
// highest-scoring intent wins; ties resolve to search and zero matches
// resolve to unknown.
var intentPatterns = map[Intent]*regexp.Regexp{
	IntentExplain:      regexp.MustCompile(`\bexplain\b|\bwhat is\b|\bwhat are\b|\bhow does\b|\bhow to\b|\bdescribe\b`),
	IntentCompare:      regexp.MustCompile(`\bcompare\b|\bcomparison\b|\bversus\b|\bvs\b|\bdifference\b|\bdiffer\b`),
	IntentAnalyze:      regexp.MustCompile(`\banalyze\b|\banalyse\b|\banalysis\b|\bevaluate\b|\bassess\b`),
	IntentSummarize:    regexp.MustCompile(`\bsummarize\b|\bsummarise\b|\bsummary\b|\boverview\b|\btldr\b`),
	IntentTutorial:     regexp.MustCompile(`\btutorial\b|\bguide\b|\bstep by step\b|\bwalkthrough\b`),
	IntentTroubleshoot: regexp.MustCompile(`\berror\b|\bproblem\b|\bfix\b|\bdebug\b|\bbroken\b|\bnot working\b|\bfailing\b|\bfails\b|\bissue\b`),
	IntentDefinition:   regexp.MustCompile(`\bdefine\b|\bdefinition\b|\bmeaning of\b`),
	IntentExample:      regexp.MustCompile(`\bexample\b|\bexamples\b|\bsample\b|\bdemo\b|\bshow me\b`),
	IntentSearch:       regexp.MustCompile(`\bfind\b|\bsearch\b|\bshow\b|\bget\b|\blist\b|\blooking for\b`),
}

// detectIntent returns the winning intent and its raw match count.
func detectIntent(text string) (Intent, int) {
	best := IntentUnknown
	bestScore := 0
	tied := false

	// Deterministic iteration order so ties behave the same on every run.
	order := []Intent{
		IntentSearch, IntentExplain, IntentCompare, IntentAnalyze,
		IntentSummarize, IntentTutorial, IntentTroubleshoot,
		IntentDefinition, IntentExample,
	}

	for _, intent := range order {
		score := len(intentPatterns[intent].FindAllString(text, -1))
		if score > bestScore {
			best = intent
			bestScore = score
			tied = false
		} else if score == bestScore && score > 0 && intent != best {
			tied = true
		}
	}

	if bestScore == 0 {
		return IntentUnknown, 0
	}
	if tied {
		return IntentSearch, bestScore
	}
	return best, bestScore
}

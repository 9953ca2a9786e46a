package pipeline

import (
	"strings"

	"github.com/devq-ai/ptolemies-sub002/internal/engine"
	"github.com/devq-ai/ptolemies-sub002/internal/query"
)

var proceduralMarkers = []string{"step", "guide", "fix", "solution", "resolve", "how to"}

// postFilter applies intent-specific shaping to the fused results and
// re-assigns ranks. Scores are left untouched.
func postFilter(intent query.Intent, results []engine.Result) []engine.Result {
	switch intent {
	case query.IntentSummarize:
		if len(results) > 3 {
			results = results[:3]
		}
	case query.IntentTutorial, query.IntentTroubleshoot:
		results = prioritizeProcedural(results)
	case query.IntentSearch, query.IntentExplain, query.IntentCompare,
		query.IntentAnalyze, query.IntentDefinition, query.IntentExample,
		query.IntentUnknown:
		// unfiltered
	}

	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// prioritizeProcedural moves results with procedural content first, keeping
// the fused order within each partition.
func prioritizeProcedural(results []engine.Result) []engine.Result {
	procedural := make([]engine.Result, 0, len(results))
	rest := make([]engine.Result, 0, len(results))

	for _, r := range results {
		if hasProceduralMarker(r) {
			procedural = append(procedural, r)
		} else {
			rest = append(rest, r)
		}
	}
	return append(procedural, rest...)
}

func hasProceduralMarker(r engine.Result) bool {
	text := strings.ToLower(r.Title + " " + r.Content)
	for _, marker := range proceduralMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

package query

// selectStrategy maps (intent, complexity, concept count) to a backend
// execution plan. The intent switch is exhaustive over the closed enum so a
// new intent cannot silently fall through.
func selectStrategy(intent Intent, complexity Complexity, conceptCount int) Strategy {
	switch intent {
	case IntentExplain:
		return StrategyConceptExpansion
	case IntentCompare:
		return StrategyGraphThenSemantic
	case IntentSearch, IntentAnalyze, IntentSummarize, IntentTutorial,
		IntentTroubleshoot, IntentDefinition, IntentExample, IntentUnknown:
		// resolved by complexity below
	}

	if complexity == ComplexityComplex {
		return StrategyHybridBalanced
	}
	if conceptCount > 2 {
		return StrategyGraphThenSemantic
	}
	return StrategySemanticOnly
}

// applyContextNudges adjusts the selected strategy for follow-up queries and
// stated preferences. Anything not covered here leaves the strategy alone.
func applyContextNudges(strategy Strategy, conceptCount int, hint *ContextHint) Strategy {
	if hint == nil {
		return strategy
	}

	// Follow-up queries benefit from relational context: a session with prior
	// queries moves a plain semantic plan toward the graph.
	if hint.PreviousQueries >= 1 && strategy == StrategySemanticOnly {
		if conceptCount > 0 {
			return StrategyConceptExpansion
		}
		return StrategyGraphThenSemantic
	}

	if hint.Preferences["prefer_examples"] != "" && strategy == StrategySemanticOnly {
		return StrategySemanticThenGraph
	}

	return strategy
}

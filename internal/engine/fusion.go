package engine

import "sort"

// fuse merges semantic and graph hits into one list keyed by id, weighting
// each backend's score by the strategy's weight pair. It returns the fused
// results (unranked) and the count of ids surfaced by both backends.
func fuse(sem []SemanticHit, gr GraphResult, semWeight, graphWeight float64) ([]Result, int) {
	byID := make(map[string]*Result, len(sem)+len(gr.Nodes))
	order := make([]string, 0, len(sem)+len(gr.Nodes))

	for _, hit := range sem {
		if _, ok := byID[hit.ID]; ok {
			continue
		}
		byID[hit.ID] = &Result{
			ID:              hit.ID,
			Title:           hit.Title,
			Content:         hit.Content,
			SourceName:      hit.Source,
			SourceURL:       hit.SourceURL,
			SemanticScore:   clamp01(hit.Score),
			FoundVia:        []string{FoundViaSemantic},
			Topics:          append([]string{}, hit.Topics...),
			RelatedConcepts: []string{},
		}
		order = append(order, hit.ID)
	}

	names := make(map[string]string, len(gr.Nodes))
	for _, n := range gr.Nodes {
		names[n.ID] = n.Name
	}

	overlap := 0
	for _, node := range gr.Nodes {
		score := graphScore(node)
		if existing, ok := byID[node.ID]; ok {
			if existing.GraphScore == 0 {
				overlap++
			}
			existing.GraphScore = score
			existing.FoundVia = appendUnique(existing.FoundVia, FoundViaGraph)
			existing.Topics = mergeUnique(existing.Topics, node.Topics)
			continue
		}
		byID[node.ID] = &Result{
			ID:              node.ID,
			Title:           node.Name,
			Content:         node.Content,
			SourceName:      node.Source,
			SourceURL:       node.SourceURL,
			GraphScore:      score,
			FoundVia:        []string{FoundViaGraph},
			Topics:          append([]string{}, node.Topics...),
			RelatedConcepts: []string{},
		}
		order = append(order, node.ID)
	}

	// Relationship endpoints are node ids when both ends are result nodes,
	// or bare concept names for topic links.
	for _, rel := range gr.Relationships {
		if r, ok := byID[rel.From]; ok {
			name := names[rel.To]
			if name == "" {
				name = rel.To
			}
			if name != "" && name != r.Title {
				r.RelatedConcepts = appendUnique(r.RelatedConcepts, name)
			}
		}
		if r, ok := byID[rel.To]; ok {
			if name := names[rel.From]; name != "" && name != r.Title {
				r.RelatedConcepts = appendUnique(r.RelatedConcepts, name)
			}
		}
	}

	fused := make([]Result, 0, len(order))
	for _, id := range order {
		r := byID[id]
		r.CombinedScore = semWeight*r.SemanticScore + graphWeight*r.GraphScore
		fused = append(fused, *r)
	}
	return fused, overlap
}

// rank sorts descending by combined score with ascending id as the
// deterministic tie-break, assigns 1-based ranks and truncates to limit.
func rank(results []Result, limit int) []Result {
	sort.Slice(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		return results[i].ID < results[j].ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// graphScore derives a [0,1] relevance score from a node. Nodes stored
// without a weight count as middling relevance rather than zero, which would
// erase them from fused rankings.
func graphScore(n GraphNode) float64 {
	if n.Weight <= 0 {
		return 0.5
	}
	return clamp01(n.Weight)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}

func mergeUnique(dst, src []string) []string {
	for _, s := range src {
		dst = appendUnique(dst, s)
	}
	return dst
}

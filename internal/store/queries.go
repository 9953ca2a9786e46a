package store

const (
	upsertDocumentQuery = `
		MERGE (d:Document {id: $id})
		SET d.title = $title,
			d.content = $content,
			d.source_name = $source_name,
			d.source_url = $source_url,
			d.topics = $topics,
			d.weight = $weight
		WITH d
		UNWIND $topics AS topic
		MERGE (c:Concept {name: topic})
		MERGE (d)-[:HAS_TOPIC]->(c)
	`

	relateConceptsQuery = `
		MATCH (a:Concept {name: $from}), (b:Concept {name: $to})
		MERGE (a)-[r:RELATED_TO]->(b)
		SET r.strength = $strength
	`

	// Direct term match on the document itself.
	documentSearchQuery = `
		MATCH (d:Document)
		WHERE any(term IN $terms WHERE
			toLower(d.title) CONTAINS term
			OR toLower(d.content) CONTAINS term
			OR any(t IN d.topics WHERE toLower(t) CONTAINS term))
		RETURN d.id AS id, d.title AS title, d.content AS content,
			d.source_name AS source_name, d.source_url AS source_url,
			d.topics AS topics, d.weight AS weight,
			[] AS matched_concepts
		LIMIT $limit
	`

	// Concept-neighborhood match: concepts hit by a term, widened over
	// RELATED_TO up to the configured depth, then back to their documents.
	// The depth bound is inlined because Cypher cannot parameterize
	// variable-length patterns.
	conceptSearchQueryFmt = `
		MATCH (c:Concept)
		WHERE any(term IN $terms WHERE toLower(c.name) CONTAINS term)
		MATCH (d:Document)-[:HAS_TOPIC]->(n:Concept)-[:RELATED_TO*0..%d]-(c)
		RETURN d.id AS id, d.title AS title, d.content AS content,
			d.source_name AS source_name, d.source_url AS source_url,
			d.topics AS topics, d.weight AS weight,
			collect(DISTINCT c.name) AS matched_concepts
		LIMIT $limit
	`
)

package query

// Fixed vocabularies driving the processor. These are lookup tables, not a
// general NLP model: unknown tokens always pass through untouched.

var entityVocabulary = map[string]EntityType{
	// technologies
	"redis":         EntityTechnology,
	"neo4j":         EntityTechnology,
	"memgraph":      EntityTechnology,
	"postgresql":    EntityTechnology,
	"postgres":      EntityTechnology,
	"mysql":         EntityTechnology,
	"sqlite":        EntityTechnology,
	"mongodb":       EntityTechnology,
	"elasticsearch": EntityTechnology,
	"kafka":         EntityTechnology,
	"rabbitmq":      EntityTechnology,
	"docker":        EntityTechnology,
	"kubernetes":    EntityTechnology,
	"nginx":         EntityTechnology,
	"memcached":     EntityTechnology,
	"cassandra":     EntityTechnology,
	"prometheus":    EntityTechnology,
	"grafana":       EntityTechnology,

	// languages
	"python":     EntityLanguage,
	"go":         EntityLanguage,
	"golang":     EntityLanguage,
	"javascript": EntityLanguage,
	"typescript": EntityLanguage,
	"java":       EntityLanguage,
	"rust":       EntityLanguage,
	"ruby":       EntityLanguage,
	"php":        EntityLanguage,
	"kotlin":     EntityLanguage,
	"swift":      EntityLanguage,
	"sql":        EntityLanguage,

	// frameworks
	"react":   EntityFramework,
	"vue":     EntityFramework,
	"angular": EntityFramework,
	"django":  EntityFramework,
	"flask":   EntityFramework,
	"fastapi": EntityFramework,
	"spring":  EntityFramework,
	"rails":   EntityFramework,
	"express": EntityFramework,
	"gin":     EntityFramework,
	"laravel": EntityFramework,

	// tools
	"git":       EntityTool,
	"jenkins":   EntityTool,
	"terraform": EntityTool,
	"ansible":   EntityTool,
	"webpack":   EntityTool,
	"maven":     EntityTool,
	"gradle":    EntityTool,
	"curl":      EntityTool,

	// concepts
	"authentication": EntityConcept,
	"authorization":  EntityConcept,
	"caching":        EntityConcept,
	"encryption":     EntityConcept,
	"concurrency":    EntityConcept,
	"microservices":  EntityConcept,
	"scalability":    EntityConcept,
	"performance":    EntityConcept,
	"testing":        EntityConcept,
	"deployment":     EntityConcept,
	"indexing":       EntityConcept,
	"replication":    EntityConcept,
	"sharding":       EntityConcept,
	"serialization":  EntityConcept,
	"observability":  EntityConcept,
	"security":       EntityConcept,
	"architecture":   EntityConcept,
}

// conceptVocabulary covers topic labels that count as concepts even when the
// matching token was not recognized as an entity (e.g. "database").
var conceptVocabulary = map[string]bool{
	"authentication": true,
	"authorization":  true,
	"caching":        true,
	"encryption":     true,
	"concurrency":    true,
	"microservices":  true,
	"scalability":    true,
	"performance":    true,
	"testing":        true,
	"deployment":     true,
	"indexing":       true,
	"replication":    true,
	"sharding":       true,
	"serialization":  true,
	"observability":  true,
	"security":       true,
	"architecture":   true,
	"database":       true,
	"databases":      true,
	"networking":     true,
	"monitoring":     true,
	"storage":        true,
	"search":         true,
	"migration":      true,
	"logging":        true,
}

var misspellings = map[string]string{
	"pyton":         "python",
	"pyhton":        "python",
	"javascrpt":     "javascript",
	"javasript":     "javascript",
	"authetication": "authentication",
	"athentication": "authentication",
	"databse":       "database",
	"datbase":       "database",
	"kubernets":     "kubernetes",
	"kuberentes":    "kubernetes",
	"dokcer":        "docker",
	"postgress":     "postgresql",
	"cachng":        "caching",
	"recieve":       "receive",
	"seperate":      "separate",
	"performace":    "performance",
	"concurency":    "concurrency",
}

// synonyms feed query expansion; substitution is word-boundary safe.
var synonyms = map[string]string{
	"javascript":     "js",
	"kubernetes":     "k8s",
	"postgresql":     "postgres",
	"authentication": "auth",
	"configuration":  "config",
	"database":       "db",
	"golang":         "go",
	"performance":    "speed",
	"error":          "failure",
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "must": true, "can": true, "of": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "with": true,
	"by": true, "from": true, "about": true, "as": true, "into": true,
	"through": true, "during": true, "before": true, "after": true,
	"between": true, "out": true, "against": true, "without": true,
	"under": true, "around": true, "among": true, "and": true, "but": true,
	"if": true, "or": true, "because": true, "until": true, "while": true,
	"how": true, "why": true, "when": true, "where": true, "what": true,
	"which": true, "who": true, "whom": true, "this": true, "that": true,
	"these": true, "those": true, "i": true, "you": true, "he": true,
	"she": true, "it": true, "we": true, "they": true, "me": true,
	"my": true, "your": true, "their": true, "its": true, "am": true,
	"not": true, "no": true, "so": true, "than": true, "then": true,
	"there": true, "here": true, "all": true, "any": true, "both": true,
	"each": true, "more": true, "most": true, "some": true, "such": true,
	"only": true, "very": true, "just": true, "vs": true, "versus": true,
}

package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/devq-ai/ptolemies-sub002/internal/cache"
	"github.com/devq-ai/ptolemies-sub002/internal/engine"
	"github.com/devq-ai/ptolemies-sub002/internal/query"
	"github.com/devq-ai/ptolemies-sub002/internal/session"
)

const maxQueryLength = 1000

// Executor is the engine surface the orchestrator drives; *engine.Engine
// satisfies it.
type Executor interface {
	Execute(ctx context.Context, pq query.ProcessedQuery, limit int) ([]engine.Result, engine.Metrics, error)
}

type Request struct {
	Query       string            `json:"query"`
	SessionID   string            `json:"session_id"`
	UserID      string            `json:"user_id"`
	Preferences map[string]string `json:"preferences"`
	Limit       int               `json:"limit"`
}

// Envelope is the caller-facing result of one query.
type Envelope struct {
	Query            string               `json:"query"`
	SessionID        string               `json:"session_id"`
	Processed        query.ProcessedQuery `json:"processed_query"`
	Results          []engine.Result      `json:"results"`
	Metrics          engine.Metrics       `json:"metrics"`
	CacheHit         bool                 `json:"cache_hit"`
	Error            string               `json:"error,omitempty"`
	ProcessingTimeMs int64                `json:"processing_time_ms"`
}

// Orchestrator owns the query pipeline: session lifecycle, cache lookups,
// processing, engine execution, intent post-filtering and context updates.
type Orchestrator struct {
	processor    *query.Processor
	engine       Executor
	sessions     session.Store
	cache        cache.Cache
	cacheTTL     time.Duration
	defaultLimit int
	maxHistory   int
	log          zerolog.Logger
}

// NewOrchestrator wires the pipeline. cacheClient may be nil, which disables
// caching entirely.
func NewOrchestrator(processor *query.Processor, exec Executor, sessions session.Store,
	cacheClient cache.Cache, cacheTTL time.Duration, defaultLimit, maxHistory int,
	log zerolog.Logger) *Orchestrator {

	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &Orchestrator{
		processor:    processor,
		engine:       exec,
		sessions:     sessions,
		cache:        cacheClient,
		cacheTTL:     cacheTTL,
		defaultLimit: defaultLimit,
		maxHistory:   maxHistory,
		log:          log,
	}
}

// ProcessQuery is the top-level entry point. A degraded engine run still
// returns best-effort results; only a ValidationError or both backends being
// down produce a non-nil error.
func (o *Orchestrator) ProcessQuery(ctx context.Context, req Request) (Envelope, error) {
	start := time.Now()

	trimmed := strings.TrimSpace(req.Query)
	if trimmed == "" {
		return Envelope{}, &ValidationError{Reason: "query is empty"}
	}
	if len(trimmed) > maxQueryLength {
		return Envelope{}, &ValidationError{Reason: fmt.Sprintf("query exceeds %d characters", maxQueryLength)}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	sctx := o.sessions.GetOrCreate(sessionID, req.UserID)
	prefs := mergePreferences(sctx.Preferences, req.Preferences)

	key := cacheKey(trimmed, sessionID, len(sctx.PreviousQueries), prefs)
	if env, ok := o.cachedEnvelope(ctx, key); ok {
		env.CacheHit = true
		env.ProcessingTimeMs = time.Since(start).Milliseconds()
		o.recordQuery(ctx, sessionID, trimmed, env.Processed.Intent, req.Preferences)
		return env, nil
	}

	hint := &query.ContextHint{
		PreviousQueries: len(sctx.PreviousQueries),
		Preferences:     prefs,
	}
	pq := o.processor.Process(ctx, trimmed, hint)

	limit := req.Limit
	if limit <= 0 {
		limit = o.defaultLimit
	}

	results, metrics, err := o.engine.Execute(ctx, pq, limit)
	env := Envelope{
		Query:     req.Query,
		SessionID: sessionID,
		Processed: pq,
		Results:   results,
		Metrics:   metrics,
	}
	if err != nil {
		env.Error = err.Error()
		env.Results = []engine.Result{}
		env.ProcessingTimeMs = time.Since(start).Milliseconds()
		return env, err
	}

	env.Results = postFilter(pq.Intent, results)

	// A canceled request must not touch session state or the cache.
	if ctx.Err() != nil {
		env.ProcessingTimeMs = time.Since(start).Milliseconds()
		return env, ctx.Err()
	}

	o.recordQuery(ctx, sessionID, trimmed, pq.Intent, req.Preferences)
	o.storeEnvelope(ctx, key, env)

	env.ProcessingTimeMs = time.Since(start).Milliseconds()
	return env, nil
}

// GetSessionInfo returns a snapshot of one session's context.
func (o *Orchestrator) GetSessionInfo(sessionID string) (session.Context, bool) {
	return o.sessions.Snapshot(sessionID)
}

// ClearSession drops a session's context.
func (o *Orchestrator) ClearSession(sessionID string) bool {
	return o.sessions.Delete(sessionID)
}

func (o *Orchestrator) cachedEnvelope(ctx context.Context, key string) (Envelope, bool) {
	if o.cache == nil {
		return Envelope{}, false
	}

	data, hit, err := o.cache.Get(ctx, key)
	if err != nil {
		o.log.Debug().Err(err).Msg("cache get failed, treating as miss")
		return Envelope{}, false
	}
	if !hit {
		return Envelope{}, false
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		o.log.Debug().Err(err).Msg("cached envelope unreadable, treating as miss")
		return Envelope{}, false
	}
	return env, true
}

func (o *Orchestrator) storeEnvelope(ctx context.Context, key string, env Envelope) {
	if o.cache == nil {
		return
	}

	data, err := json.Marshal(env)
	if err != nil {
		o.log.Debug().Err(err).Msg("envelope marshal failed, skipping cache")
		return
	}
	if err := o.cache.Set(ctx, key, data, o.cacheTTL); err != nil {
		o.log.Debug().Err(err).Msg("cache set failed")
	}
}

func (o *Orchestrator) recordQuery(ctx context.Context, sessionID, q string, intent query.Intent, prefs map[string]string) {
	if ctx.Err() != nil {
		return
	}
	now := time.Now().UTC()
	o.sessions.Update(sessionID, func(c *session.Context) {
		for k, v := range prefs {
			c.Preferences[k] = v
		}
		c.Record(q, intent, o.maxHistory, now)
	})
}

// cacheKey hashes everything that changes the answer: the normalized query,
// the session, how many queries preceded this one (context nudges depend on
// it) and the preferences in effect.
func cacheKey(rawQuery, sessionID string, previousQueries int, prefs map[string]string) string {
	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(query.Normalize(rawQuery))
	b.WriteString("\n")
	b.WriteString(sessionID)
	fmt.Fprintf(&b, "\n%d", previousQueries)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s=%s", k, prefs[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return "q:" + hex.EncodeToString(sum[:])
}

func mergePreferences(base, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

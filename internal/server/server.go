package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/devq-ai/ptolemies-sub002/internal/engine"
	"github.com/devq-ai/ptolemies-sub002/internal/pipeline"
	"github.com/devq-ai/ptolemies-sub002/internal/store"
)

// Server exposes the query pipeline over HTTP.
type Server struct {
	orchestrator *pipeline.Orchestrator
	semantic     *store.SemanticStore
	graph        *store.GraphStore
	log          zerolog.Logger
}

func New(orchestrator *pipeline.Orchestrator, semantic *store.SemanticStore, graph *store.GraphStore, log zerolog.Logger) *Server {
	return &Server{
		orchestrator: orchestrator,
		semantic:     semantic,
		graph:        graph,
		log:          log,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/query", s.ProcessQuery)
	r.GET("/sessions/:id", s.GetSessionInfo)
	r.DELETE("/sessions/:id", s.ClearSession)
	r.POST("/documents", s.UpsertDocuments)
	r.GET("/healthz", s.Health)

	return r
}

func (s *Server) ProcessQuery(c *gin.Context) {
	var req pipeline.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	env, err := s.orchestrator.ProcessQuery(c.Request.Context(), req)
	if err != nil {
		var vErr *pipeline.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}

		var eErr *engine.EngineError
		if errors.As(err, &eErr) {
			// Both backends down: the envelope still carries the error field
			// and empty results.
			c.JSON(http.StatusBadGateway, env)
			return
		}

		s.log.Error().Err(err).Msg("query processing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process query"})
		return
	}

	c.JSON(http.StatusOK, env)
}

func (s *Server) GetSessionInfo(c *gin.Context) {
	sctx, ok := s.orchestrator.GetSessionInfo(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, sctx)
}

func (s *Server) ClearSession(c *gin.Context) {
	if !s.orchestrator.ClearSession(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

type UpsertDocumentsRequest struct {
	Documents []store.Document `json:"documents" binding:"required"`
}

// UpsertDocuments seeds both stores. Full ingestion lives outside this
// service; this endpoint exists so operators can load content directly.
func (s *Server) UpsertDocuments(c *gin.Context) {
	var req UpsertDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	if err := s.semantic.Upsert(ctx, req.Documents); err != nil {
		s.log.Error().Err(err).Msg("semantic upsert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to index documents"})
		return
	}
	if err := s.graph.Upsert(ctx, req.Documents); err != nil {
		s.log.Error().Err(err).Msg("graph upsert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to index documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingested": len(req.Documents)})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

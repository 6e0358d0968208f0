package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mycguo/autogen-multi-agent-workflow/state"
	"github.com/mycguo/autogen-multi-agent-workflow/workflow"
)

// CreateRunRequest represents a topic submission. Force resubmits a topic
// the deduplicator would otherwise reject.
type CreateRunRequest struct {
	Topic     string `json:"topic" binding:"required"`
	SourceURL string `json:"source_url"`
	Publish   bool   `json:"publish"`
	Force     bool   `json:"force"`
}

// registerRunRoutes registers run submission and inspection endpoints.
func (s *Server) registerRunRoutes(r *gin.Engine) {
	g := r.Group("/api/runs")
	g.POST("", s.handleCreateRun)
	g.GET("", s.handleListRuns)
	g.GET("/:id", s.handleGetRun)
}

// handleCreateRun accepts a topic and starts a run asynchronously.
// It returns 202 with the run status, or 409 when the pipeline is busy or
// the topic duplicates a recent one.
func (s *Server) handleCreateRun(c *gin.Context) {
	var req CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := s.runner.Submit(c.Request.Context(), workflow.Request{
		Topic:     req.Topic,
		SourceURL: req.SourceURL,
		Publish:   req.Publish,
		Force:     req.Force,
	})
	switch {
	case errors.Is(err, workflow.ErrDuplicateTopic):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "duplicate": true})
		return
	case errors.Is(err, state.ErrRunActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("📥 Run %s accepted: %s", status.ID, status.Topic)
	c.JSON(http.StatusAccepted, status)
}

// handleGetRun returns one run's full status including logs and result.
func (s *Server) handleGetRun(c *gin.Context) {
	status, ok := s.states.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// handleListRuns returns summaries of all known runs, newest first.
func (s *Server) handleListRuns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"runs": s.states.List()})
}

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// registerTopicRoutes registers topic suggestion endpoints.
func (s *Server) registerTopicRoutes(r *gin.Engine) {
	g := r.Group("/api/topics")
	g.GET("/suggestions", s.handleSuggestions)
}

// handleSuggestions returns topic suggestions from an RSS feed.
// Query params: feed (preset name or URL, optional), count (int, optional)
func (s *Server) handleSuggestions(c *gin.Context) {
	feed := c.DefaultQuery("feed", s.feed)

	count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
	if err != nil || count <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be a positive integer"})
		return
	}

	suggestions, err := s.suggester.Suggest(c.Request.Context(), feed, count)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushub/portal/internal/model"
)

func (s *Server) listAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := s.audit.List(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if entries == nil {
		entries = []*model.AuditLog{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) summarizeAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	summary, err := s.audit.Summarize(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.stats.Snapshot(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

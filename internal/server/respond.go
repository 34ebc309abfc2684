package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campushub/portal/internal/model"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Storage
// failures are logged server-side and surfaced as a plain 500; everything
// else carries its message.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "slot unavailable, please pick another slot"})
	case errors.Is(err, model.ErrBookUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "book is already borrowed"})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, model.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.Is(err, model.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case model.IsStorageError(err):
		s.logger.Error("Storage failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		s.logger.Error("Unhandled failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/portal/internal/model"
)

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) createUser(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actor := currentUser(c)
	user, err := s.users.Create(c.Request.Context(), actor.ID, req.Name, req.Email, req.Role)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) updateUser(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actor := currentUser(c)
	user, err := s.users.Update(c.Request.Context(), actor.ID, c.Param("id"), req.Name, req.Email, req.Role)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	actor := currentUser(c)
	if err := s.users.Delete(c.Request.Context(), actor.ID, c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listRoles(c *gin.Context) {
	roles, err := s.roles.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	if roles == nil {
		roles = []*model.Role{}
	}
	c.JSON(http.StatusOK, roles)
}

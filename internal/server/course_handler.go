package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/portal/internal/model"
)

func (s *Server) listCourses(c *gin.Context) {
	courses, err := s.courses.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	if courses == nil {
		courses = []*model.Course{}
	}
	c.JSON(http.StatusOK, courses)
}

func (s *Server) createCourse(c *gin.Context) {
	var req struct {
		Code         string `json:"code" binding:"required"`
		Name         string `json:"name" binding:"required"`
		Description  string `json:"description"`
		InstructorID string `json:"instructor_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	course, err := s.courses.Create(c.Request.Context(), currentUser(c), currentRole(c),
		req.Code, req.Name, req.Description, req.InstructorID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (s *Server) updateCourse(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	course, err := s.courses.Update(c.Request.Context(), currentUser(c), currentRole(c),
		c.Param("code"), req.Name, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (s *Server) deleteCourse(c *gin.Context) {
	if err := s.courses.Delete(c.Request.Context(), currentUser(c), currentRole(c), c.Param("code")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) toggleEnrollment(c *gin.Context) {
	actor := currentUser(c)
	enrolled, err := s.courses.ToggleEnrollment(c.Request.Context(), actor.ID, c.Param("code"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrolled": enrolled})
}

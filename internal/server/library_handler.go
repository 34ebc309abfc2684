package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/portal/internal/model"
)

func (s *Server) listBooks(c *gin.Context) {
	books, err := s.library.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if books == nil {
		books = []*model.Book{}
	}
	c.JSON(http.StatusOK, books)
}

func (s *Server) addBook(c *gin.Context) {
	var req struct {
		Title      string `json:"title" binding:"required"`
		Author     string `json:"author" binding:"required"`
		CoverImage string `json:"cover_image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actor := currentUser(c)
	book, err := s.library.AddBook(c.Request.Context(), actor.ID, req.Title, req.Author, req.CoverImage)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (s *Server) toggleBorrow(c *gin.Context) {
	actor := currentUser(c)
	book, err := s.library.ToggleBorrow(c.Request.Context(), actor.ID, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

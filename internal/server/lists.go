package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wimitasks/internal/models"
)

type todoListRequest struct {
	Title  string `json:"title" binding:"required"`
	UserID int64  `json:"userId" binding:"required"`
	Color  string `json:"color"`
}

// handleListTodoLists returns lists, filtered by userId when given.
func (s *Server) handleListTodoLists(c *gin.Context) {
	userID, ok := queryID(c, "userId")
	if !ok {
		return
	}
	lists, err := s.store.ListTodoLists(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (s *Server) handleGetTodoList(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := s.store.GetTodoList(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// handleCreateTodoList creates a list; a missing color gets one from the palette.
func (s *Server) handleCreateTodoList(c *gin.Context) {
	var req todoListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	list, err := s.store.CreateTodoList(c.Request.Context(), models.TaskList{
		Title:  req.Title,
		UserID: req.UserID,
		Color:  req.Color,
	})
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

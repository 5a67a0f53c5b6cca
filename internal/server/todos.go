package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wimitasks/internal/models"
)

type todoRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Completed   bool            `json:"completed"`
	TodoListID  int64           `json:"todoListId" binding:"required"`
	Priority    models.Priority `json:"priority"`
	DueDate     models.Date     `json:"dueDate"`
}

// handleListTodos returns todos, filtered by todoListId when given.
func (s *Server) handleListTodos(c *gin.Context) {
	listID, ok := queryID(c, "todoListId")
	if !ok {
		return
	}
	todos, err := s.store.ListTodos(c.Request.Context(), listID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (s *Server) handleGetTodo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	todo, err := s.store.GetTodo(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// handleCreateTodo inserts a todo. The server assigns id and createdAt.
func (s *Server) handleCreateTodo(c *gin.Context) {
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	todo, err := s.store.CreateTodo(c.Request.Context(), models.Task{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		TodoListID:  req.TodoListID,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

// handleUpdateTodo merges the supplied fields into an existing todo.
func (s *Server) handleUpdateTodo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	todo, err := s.store.UpdateTodo(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// handleDeleteTodo removes a todo and answers with an empty object.
func (s *Server) handleDeleteTodo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteTodo(c.Request.Context(), id); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

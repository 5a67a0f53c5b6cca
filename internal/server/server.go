package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wimitasks/internal/storage/sqlite"
)

// RequestIDHeader carries the correlation id of a request.
const RequestIDHeader = "X-Request-ID"

// Server provides the mock REST API consumed by the task client.
type Server struct {
	engine *gin.Engine
	store  *sqlite.Store
	logger *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine: router,
		store:  store,
		logger: logger,
	}
	router.Use(srv.requestLogger())

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires the collection endpoints the way a json-server mock exposes them.
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)

	s.engine.GET("/users", s.handleFindUsers)

	lists := s.engine.Group("/todoLists")
	{
		lists.GET("", s.handleListTodoLists)
		lists.POST("", s.handleCreateTodoList)
		lists.GET(":id", s.handleGetTodoList)
	}

	todos := s.engine.Group("/todos")
	{
		todos.GET("", s.handleListTodos)
		todos.POST("", s.handleCreateTodo)
		todos.GET(":id", s.handleGetTodo)
		todos.PATCH(":id", s.handleUpdateTodo)
		todos.DELETE(":id", s.handleDeleteTodo)
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "endpoint not found"})
	})
}

// requestLogger tags each request with an id and logs its outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		s.logger.Debug("request",
			slog.String("request_id", id),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// queryID reads an optional numeric query filter.
func queryID(c *gin.Context, name string) (*int64, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + name})
		return nil, false
	}
	return &id, true
}

// respondError logs the error and returns a JSON payload. Missing rows map to 404.
// Client errors are logged at warn level.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if errors.Is(err, sqlite.ErrNotFound) {
		status = http.StatusNotFound
	}
	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	s.logger.Log(c.Request.Context(), level, "request failed",
		slog.String("path", c.FullPath()),
		slog.Int("status", status),
		slog.String("request_id", c.Writer.Header().Get(RequestIDHeader)),
		slog.String("error", err.Error()))
	c.JSON(status, gin.H{"message": err.Error()})
}

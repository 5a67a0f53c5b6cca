package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// queryFilter returns the query parameter, or nil when it is absent.
// A present but empty value is a filter on the empty string.
func queryFilter(c *gin.Context, name string) *string {
	v, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	return &v
}

// handleFindUsers filters users by email and password query parameters.
// Matching is plain equality, as the mock API it stands in for does.
func (s *Server) handleFindUsers(c *gin.Context) {
	users, err := s.store.FindUsers(c.Request.Context(), queryFilter(c, "email"), queryFilter(c, "password"))
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

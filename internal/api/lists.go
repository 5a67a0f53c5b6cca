package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"wimitasks/internal/models"
)

// ListsByOwner returns the user's lists, most recently created first.
func (c *Client) ListsByOwner(ctx context.Context, userID int64) ([]models.TaskList, error) {
	var lists []models.TaskList
	q := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	if err := c.do(ctx, http.MethodGet, "/todoLists", q, nil, &lists); err != nil {
		return nil, err
	}
	models.SortLists(lists)
	return lists, nil
}

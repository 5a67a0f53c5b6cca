package api

import (
	"context"
	"net/http"
	"net/url"

	"wimitasks/internal/models"
)

// LookupUsers returns every user whose email and password equal the given values.
func (c *Client) LookupUsers(ctx context.Context, email, password string) ([]models.Credentials, error) {
	var users []models.Credentials
	q := url.Values{"email": {email}, "password": {password}}
	if err := c.do(ctx, http.MethodGet, "/users", q, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/eliteadvisers/portal/internal/model"
)

type dashboardResponse struct {
	Data *model.Dashboard `json:"data" binding:"required"`
}

type adminsResponse struct {
	Admins []model.Admin `json:"admins"`
}

// Dashboard loads the client aggregate. GET /auth/dashboard
func (c *Client) Dashboard(ctx context.Context, token string) (*model.Dashboard, error) {
	var out dashboardResponse
	if err := c.do(ctx, http.MethodGet, "/auth/dashboard", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// RateQuery rates a closed query. POST /auth/query/:id/rate
func (c *Client) RateQuery(ctx context.Context, token, id string, rating int) error {
	path := fmt.Sprintf("/auth/query/%s/rate", url.PathEscape(id))
	return c.do(ctx, http.MethodPost, path, token, model.RateRequest{Rating: rating}, nil)
}

// ReopenQuery reopens a closed query; the server picks the resulting status.
// POST /auth/query/:id/reopen
func (c *Client) ReopenQuery(ctx context.Context, token, id string) error {
	path := fmt.Sprintf("/auth/query/%s/reopen", url.PathEscape(id))
	return c.do(ctx, http.MethodPost, path, token, nil, nil)
}

// ListAdmins fetches the advisor directory. GET /admin/list (unauthenticated)
func (c *Client) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var out adminsResponse
	if err := c.do(ctx, http.MethodGet, "/admin/list", "", nil, &out); err != nil {
		return nil, err
	}
	if out.Admins == nil {
		return []model.Admin{}, nil
	}
	return out.Admins, nil
}

package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/eliteadvisers/portal/internal/model"
)

type problemsResponse struct {
	Problems []model.Problem `json:"problems" binding:"dive"`
}

// AdminProblems lists every client query. GET /admin/problems
func (c *Client) AdminProblems(ctx context.Context, token string) ([]model.Problem, error) {
	var out problemsResponse
	if err := c.do(ctx, http.MethodGet, "/admin/problems", token, nil, &out); err != nil {
		return nil, err
	}
	if out.Problems == nil {
		return []model.Problem{}, nil
	}
	return out.Problems, nil
}

// UpdateProblem pushes one row's editable fields. PUT /admin/problems/:id
func (c *Client) UpdateProblem(ctx context.Context, token, id string, req model.UpdateProblemRequest) error {
	path := fmt.Sprintf("/admin/problems/%s", url.PathEscape(id))
	return c.do(ctx, http.MethodPut, path, token, req, nil)
}

// UpdateAdminProfile saves the advisor's profile. PUT /admin/profile
func (c *Client) UpdateAdminProfile(ctx context.Context, token string, profile model.Admin) error {
	return c.do(ctx, http.MethodPut, "/admin/profile", token, profile, nil)
}

// PublishArticle adds a library entry. POST /library
func (c *Client) PublishArticle(ctx context.Context, token string, draft model.ArticleDraft) error {
	return c.do(ctx, http.MethodPost, "/library", token, draft, nil)
}

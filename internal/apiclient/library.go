package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/eliteadvisers/portal/internal/model"
)

type libraryResponse struct {
	Items []model.Article `json:"items"`
}

// SearchLibrary runs a free-text and tag search. Both parameters are always
// sent, empty or not. GET /library?q=&tag=
func (c *Client) SearchLibrary(ctx context.Context, q, tag string) ([]model.Article, error) {
	path := "/library?q=" + queryEscape(q) + "&tag=" + queryEscape(tag)

	var out libraryResponse
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		return []model.Article{}, nil
	}
	return out.Items, nil
}

// queryEscape percent-encodes a query value with spaces as %20.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

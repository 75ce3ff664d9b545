package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eliteadvisers/portal/internal/model"
	"github.com/eliteadvisers/portal/internal/portal"
	"github.com/eliteadvisers/portal/internal/querylist"
	"github.com/eliteadvisers/portal/internal/response"
	"github.com/eliteadvisers/portal/internal/ui"
	"github.com/eliteadvisers/portal/internal/validator"
)

type articleRequest struct {
	Title    string `json:"title"`
	Tags     string `json:"tags"`
	Summary  string `json:"summary"`
	Citation string `json:"citation"`
	Link     string `json:"link"`
}

// AdminHandler serves the advisor console.
type AdminHandler struct {
	responder
	console *portal.AdminConsole
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(console *portal.AdminConsole, notices *ui.Recorder) *AdminHandler {
	return &AdminHandler{
		responder: responder{notices: notices},
		console:   console,
	}
}

// GetDashboard godoc
// GET /admin-dashboard
// Enters the console: redirects to /admin-login without an admin session,
// otherwise starts the clock and loads advisors and problems.
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	err := h.console.Enter(c.Request.Context())
	if h.redirected(c, err) {
		return
	}
	if err != nil && !isRemote(err) {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, h.console.View())
}

// EditProblem godoc
// PATCH /admin-dashboard/problems/:id
// Changes one row locally. Nothing is sent until the row is saved.
func (h *AdminHandler) EditProblem(c *gin.Context) {
	var req querylist.RowEdit
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	if err := h.console.Queries().Edit(c.Param("id"), req); err != nil {
		h.fail(c, err)
		return
	}
	row, _ := h.console.Queries().Row(c.Param("id"))
	h.ok(c, http.StatusOK, row)
}

// SaveProblem godoc
// POST /admin-dashboard/problems/:id/save
// Pushes one row and returns the reloaded console.
func (h *AdminHandler) SaveProblem(c *gin.Context) {
	if err := h.console.SubmitQuery(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, h.console.View())
}

// UpdateProfile godoc
// PUT /admin-dashboard/profile
func (h *AdminHandler) UpdateProfile(c *gin.Context) {
	var req portal.AdminProfileEdit
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	h.console.EditProfile(req)
	if err := h.console.SaveProfile(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, h.console.Profile())
}

// PublishArticle godoc
// POST /admin-dashboard/articles
// Publishes the submitted draft to the library. A rejected draft is kept.
func (h *AdminHandler) PublishArticle(c *gin.Context) {
	var req articleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	h.console.SetDraft(model.ArticleDraft{
		Title:    req.Title,
		Tags:     req.Tags,
		Summary:  req.Summary,
		Citation: req.Citation,
		Link:     req.Link,
	})
	if err := h.console.PublishArticle(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, h.console.Draft())
}

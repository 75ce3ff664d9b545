package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eliteadvisers/portal/internal/portal"
	"github.com/eliteadvisers/portal/internal/response"
	"github.com/eliteadvisers/portal/internal/ui"
	"github.com/eliteadvisers/portal/internal/validator"
)

type rateRequest struct {
	Rating int `json:"rating"`
}

// HomeHandler serves the client dashboard.
type HomeHandler struct {
	responder
	dashboard *portal.Dashboard
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(dashboard *portal.Dashboard, notices *ui.Recorder) *HomeHandler {
	return &HomeHandler{
		responder: responder{notices: notices},
		dashboard: dashboard,
	}
}

// GetHome godoc
// GET /home
// Enters the dashboard: redirects to /login without a session, otherwise
// loads the aggregate and renders it. A failed load still renders the
// unavailable placeholder.
func (h *HomeHandler) GetHome(c *gin.Context) {
	err := h.dashboard.Enter(c.Request.Context())
	if h.redirected(c, err) {
		return
	}
	if err != nil && !isRemote(err) {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, h.dashboard.View())
}

// DismissNotification godoc
// DELETE /home/notifications/:index
func (h *HomeHandler) DismissNotification(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	if err := h.dashboard.Dismiss(idx); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, h.dashboard.Notifications())
}

// RateQuery godoc
// POST /home/queries/:id/rate
// Rates a closed query and returns the reloaded dashboard.
func (h *HomeHandler) RateQuery(c *gin.Context) {
	var req rateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	if err := h.dashboard.Rate(c.Request.Context(), c.Param("id"), req.Rating); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, h.dashboard.View())
}

// ReopenQuery godoc
// POST /home/queries/:id/reopen
func (h *HomeHandler) ReopenQuery(c *gin.Context) {
	if err := h.dashboard.Reopen(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, h.dashboard.View())
}

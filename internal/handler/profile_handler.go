package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eliteadvisers/portal/internal/portal"
	"github.com/eliteadvisers/portal/internal/response"
	"github.com/eliteadvisers/portal/internal/ui"
	"github.com/eliteadvisers/portal/internal/validator"
)

// ProfileHandler serves the client profile editor.
type ProfileHandler struct {
	responder
	dashboard *portal.Dashboard
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(dashboard *portal.Dashboard, notices *ui.Recorder) *ProfileHandler {
	return &ProfileHandler{
		responder: responder{notices: notices},
		dashboard: dashboard,
	}
}

// GetProfile godoc
// GET /profile
// Loads the editable profile; the password field is always blank.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	err := h.dashboard.LoadProfile(c.Request.Context())
	if h.redirected(c, err) {
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	form, _ := h.dashboard.ProfileForm()
	h.ok(c, http.StatusOK, form)
}

// UpdateProfile godoc
// PUT /profile
// Applies the submitted fields to the form and saves it. On failure the
// edits stay in the form.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req portal.ProfileEdit
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	if err := h.dashboard.EditProfile(req); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.dashboard.SaveProfile(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	form, _ := h.dashboard.ProfileForm()
	h.ok(c, http.StatusOK, form)
}

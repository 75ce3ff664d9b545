package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eliteadvisers/portal/internal/response"
	"github.com/eliteadvisers/portal/internal/ui"
)

// SystemHandler serves health and the pending notices.
type SystemHandler struct {
	notices *ui.Recorder
	apiBase string
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(notices *ui.Recorder, apiBase string) *SystemHandler {
	return &SystemHandler{notices: notices, apiBase: apiBase}
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok", "api_base_url": h.apiBase})
}

// Notices godoc
// GET /notices
// Returns and clears the notices not yet delivered with a response.
func (h *SystemHandler) Notices(c *gin.Context) {
	response.Success(c, http.StatusOK, h.notices.Drain())
}

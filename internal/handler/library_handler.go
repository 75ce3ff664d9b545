package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eliteadvisers/portal/internal/portal"
	"github.com/eliteadvisers/portal/internal/ui"
)

// LibraryHandler serves the public compliance library.
type LibraryHandler struct {
	responder
	library *portal.Library
}

// NewLibraryHandler creates a new LibraryHandler.
func NewLibraryHandler(library *portal.Library, notices *ui.Recorder) *LibraryHandler {
	return &LibraryHandler{
		responder: responder{notices: notices},
		library:   library,
	}
}

// Search godoc
// GET /library?q=&tag=
// Runs a search and renders the results. On failure the previous results
// are rendered with the error notice.
func (h *LibraryHandler) Search(c *gin.Context) {
	err := h.library.Search(c.Request.Context(), c.Query("q"), c.Query("tag"))
	if err != nil && !isRemote(err) {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, h.library.View())
}

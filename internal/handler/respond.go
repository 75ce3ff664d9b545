package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eliteadvisers/portal/internal/apiclient"
	"github.com/eliteadvisers/portal/internal/middleware"
	"github.com/eliteadvisers/portal/internal/portal"
	"github.com/eliteadvisers/portal/internal/querylist"
	"github.com/eliteadvisers/portal/internal/response"
	"github.com/eliteadvisers/portal/internal/session"
	"github.com/eliteadvisers/portal/internal/ui"
)

// responder turns view controller results into responses. The companion
// serves a single local principal, so the notices raised while handling a
// request are drained into that request's response.
type responder struct {
	notices *ui.Recorder
}

func (r responder) ok(c *gin.Context, status int, data interface{}) {
	response.View(c, status, data, r.notices.Drain(), middleware.NavigationTarget(c))
}

func (r responder) fail(c *gin.Context, err error) {
	status, code := classify(err)
	notices := r.notices.Drain()

	msg := response.GetMessage(code)
	for i := len(notices) - 1; i >= 0; i-- {
		if notices[i].Level == ui.LevelError {
			msg = notices[i].Message
			break
		}
	}
	response.FailView(c, status, code, msg, notices, middleware.NavigationTarget(c))
}

// redirected handles a gated view entry that was refused: the browser is
// sent to the login view the gate navigated to.
func (r responder) redirected(c *gin.Context, err error) bool {
	if !errors.Is(err, session.ErrNoSession) {
		return false
	}
	target := middleware.NavigationTarget(c)
	if target == "" {
		return false
	}
	c.Redirect(http.StatusFound, target)
	return true
}

// isRemote reports whether err came from the API. Views still render after
// such failures; the notice carries the reason.
func isRemote(err error) bool {
	return apiclient.IsFailure(err) || apiclient.IsTransport(err)
}

func classify(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized, response.ErrSessionRequired
	case errors.Is(err, portal.ErrValidation), errors.Is(err, querylist.ErrInvalidRating):
		return http.StatusBadRequest, response.ErrValidation
	case errors.Is(err, querylist.ErrRowNotFound), errors.Is(err, portal.ErrNotificationNotFound):
		return http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, querylist.ErrNotClosed), errors.Is(err, portal.ErrNoPendingSignup),
		errors.Is(err, portal.ErrProfileNotLoaded):
		return http.StatusConflict, response.ErrActionForbidden
	case apiclient.IsFailure(err):
		return http.StatusUnprocessableEntity, response.ErrRejected
	case apiclient.IsTransport(err):
		return http.StatusBadGateway, response.ErrUpstreamUnavailable
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/eliteadvisers/portal/internal/ui"
)

// ContextKeyRedirect is the Gin context key for the request's navigation capture.
const ContextKeyRedirect = "navigation"

// Navigation attaches a request-scoped navigator so that view controllers
// called by the handler report where the user should go next.
func Navigation() gin.HandlerFunc {
	return func(c *gin.Context) {
		redirect := &ui.Redirect{}
		c.Set(ContextKeyRedirect, redirect)
		c.Request = c.Request.WithContext(ui.WithNavigator(c.Request.Context(), redirect))
		c.Next()
	}
}

// NavigationTarget returns the last path navigated to while serving c, or "".
func NavigationTarget(c *gin.Context) string {
	v, ok := c.Get(ContextKeyRedirect)
	if !ok {
		return ""
	}
	if r, ok := v.(*ui.Redirect); ok {
		return r.Target()
	}
	return ""
}

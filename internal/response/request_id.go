package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eliteadvisers/portal/internal/apiclient"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware generates a unique request ID for every request and
// forwards it on every outbound API call made while serving it.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(apiclient.HeaderRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header(apiclient.HeaderRequestID, reqID)
		c.Request = c.Request.WithContext(apiclient.WithRequestID(c.Request.Context(), reqID))
		c.Next()
	}
}

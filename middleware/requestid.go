package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID ensures each request carries a stable X-Request-ID. A client
// supplied id is propagated; otherwise a new UUIDv4 is generated. The value
// is echoed in the response header and stored in the gin context under
// "requestId".
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Set("requestId", id)
		c.Next()
	}
}

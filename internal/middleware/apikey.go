package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/polyhx/hackatown-backend/pkg/response"
)

// HeaderAPIKey authenticates service-to-service calls.
const HeaderAPIKey = "X-API-Key"

// APIKey guards internal endpoints with a shared key. An empty key disables the check.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.GetHeader(HeaderAPIKey)), []byte(key)) != 1 {
			response.Unauthorized(c, "invalid api key")
			c.Abort()
			return
		}
		c.Next()
	}
}

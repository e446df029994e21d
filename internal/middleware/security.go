package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders sets the response headers of a JSON API that must never be
// framed or sniffed. Responses carry patient data and are not cacheable.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

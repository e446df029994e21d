package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/healthcare-api/pkg/httputil"
)

const DefaultMaxBodySize = 1 << 20

// SizeLimit rejects declared bodies above maxBytes and caps reads of
// undeclared ones.
func SizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			httputil.RespondWithMessage(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request size exceeds limit: body size exceeds %d bytes", maxBytes))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

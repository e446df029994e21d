package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Logger logs one line per request. Bodies are never logged since they carry
// patient data.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		logger := zerolog.Ctx(c.Request.Context())

		var event *zerolog.Event
		var msg string
		switch {
		case status >= 500:
			event, msg = logger.Error(), "Server error"
		case status >= 400:
			event, msg = logger.Warn(), "Client error"
		default:
			event, msg = logger.Info(), "Request processed"
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}

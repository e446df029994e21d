package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/healthcare-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const internalErrorMessage = "An unexpected error occurred. Please try again later."

// RespondWithSuccess sends a 200 response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	RespondWithStatus(c, http.StatusOK, data)
}

func RespondWithCreated(c *gin.Context, data interface{}) {
	RespondWithStatus(c, http.StatusCreated, data)
}

func RespondWithStatus(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError maps err to its HTTP status and user message. The
// technical detail is logged, never returned.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := internalErrorMessage

	logger := zerolog.Ctx(c.Request.Context())
	if appErr, ok := errors.As(err); ok {
		status = appErr.StatusCode()
		message = appErr.Message
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Err(appErr.Err).
			Str("detail", appErr.Detail).
			Str("entity_type", appErr.EntityType).
			Int("status", status).
			Msg("request failed")
	} else {
		logger.Error().Err(err).Msg("unhandled error")
	}

	RespondWithMessage(c, status, message)
}

// RespondWithMessage aborts with an error envelope.
func RespondWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    status,
			Message: message,
		},
	})
}

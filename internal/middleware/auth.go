package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/healthcare-api/pkg/auth"
	"github.com/jwalitptl/healthcare-api/pkg/errors"
	"github.com/jwalitptl/healthcare-api/pkg/httputil"
)

const ContextActor = "actor"

type AuthMiddleware struct {
	jwt auth.JWTService
	// required rejects mutations that carry no valid token.
	required bool
}

func NewAuthMiddleware(jwt auth.JWTService, required bool) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, required: required}
}

// Actor resolves the bearer token, when present, to the acting user and puts
// it on the request context where audit entries pick it up.
func (m *AuthMiddleware) Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := m.subject(c.GetHeader("Authorization"))
		if err != nil || subject == "" {
			if m.required && isMutation(c.Request.Method) {
				if err == nil {
					err = auth.ErrInvalidToken
				}
				httputil.RespondWithError(c, errors.Unauthorized(err))
				return
			}
			if err != nil {
				zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("ignoring invalid bearer token")
			}
			c.Next()
			return
		}

		c.Set(ContextActor, subject)
		c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), subject))
		c.Next()
	}
}

// subject returns "" without error when no Authorization header is sent.
func (m *AuthMiddleware) subject(header string) (string, error) {
	if header == "" {
		return "", nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", auth.ErrInvalidToken
	}
	claims, err := m.jwt.ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

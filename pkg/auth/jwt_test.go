package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "healthcare-api")

	token, err := svc.GenerateToken("nurse-1", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "nurse-1", claims.Subject)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("secret", "healthcare-api")

	expired, err := svc.GenerateToken("nurse-1", -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewJWTService("other", "healthcare-api").GenerateToken("nurse-1", time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewJWTService("secret", "someone-else").GenerateToken("nurse-1", time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong key":    otherKey,
		"wrong issuer": otherIssuer,
		"alg none":     none,
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)

	actor, ok := ActorFromContext(WithActor(context.Background(), "dr-who"))
	assert.True(t, ok)
	assert.Equal(t, "dr-who", actor)
}

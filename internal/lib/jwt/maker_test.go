package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken(t *testing.T) {
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker("test_secret_key_1234567890", tokenTTL)

	tests := []struct {
		name    string
		subject string
		role    string
	}{
		{name: "admin", subject: "catalog-manager", role: RoleAdmin},
		{name: "regular user", subject: "user@domain.com", role: RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.subject, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.subject, claims.Subject)
			assert.Equal(t, tt.role, claims.Role)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewJWTMaker(secretKey, 15*time.Minute)

	validToken, err := maker.GenerateToken("testuser", RoleUser)
	require.NoError(t, err)

	expired, err := NewJWTMaker(secretKey, -time.Hour).GenerateToken("testuser", RoleUser)
	require.NoError(t, err)

	wrongSecret, err := NewJWTMaker("wrong_secret_key", time.Hour).GenerateToken("testuser", RoleAdmin)
	require.NoError(t, err)

	noSubject, err := maker.GenerateToken("", RoleAdmin)
	require.NoError(t, err)

	otherAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, CustomClaims{
		Role:             RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "testuser"},
	}).SignedString([]byte(secretKey))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: expired},
		{name: "wrong secret key", token: wrongSecret},
		{name: "tampered token", token: validToken + "tampered"},
		{name: "missing subject", token: noSubject},
		{name: "unexpected algorithm", token: otherAlg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

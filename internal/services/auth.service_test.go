package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = strings.Repeat("s", 32)

func TestNewAuthService_ShortSecret(t *testing.T) {
	_, err := NewAuthService("short", time.Hour)
	assert.Error(t, err)
}

func TestAuthService_RoundTrip(t *testing.T) {
	auth, err := NewAuthService(testSecret, time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := auth.GenerateToken("grafana")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "grafana", claims.Client)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.NoError(t, auth.Validate(token))
}

func TestAuthService_Rejects(t *testing.T) {
	auth, err := NewAuthService(testSecret, time.Hour)
	require.NoError(t, err)
	other, err := NewAuthService(strings.Repeat("o", 32), time.Hour)
	require.NoError(t, err)

	foreign, _, err := other.GenerateToken("x")
	require.NoError(t, err)
	assert.Error(t, auth.Validate(foreign))

	assert.Error(t, auth.Validate("not-a-token"))
	assert.Error(t, auth.Validate(""))
}

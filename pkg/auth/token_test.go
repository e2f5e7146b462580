package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fooddealsberlin/backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "fooddeals-auth"}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, time.Now(), time.Hour, userID, "doener_lover")
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "doener_lover", claims.Username)
	assert.Equal(t, "fooddeals-auth", claims.Issuer)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()

	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), time.Hour, uuid.New(), "u")
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	assert.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now(), time.Hour, uuid.New(), "u")
	require.NoError(t, err)

	_, err = ParseAccessToken(config.JWTConfig{Secret: "other", Issuer: "fooddeals-auth"}, token)
	assert.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Issuer = "someone-else"
	token, err := MintAccessToken(cfg, time.Now(), time.Hour, uuid.New(), "u")
	require.NoError(t, err)

	_, err = ParseAccessToken(testJWTConfig(), token)
	assert.Error(t, err)
}

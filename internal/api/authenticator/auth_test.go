package authenticator

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow/internal/config"
)

func newTestAuthenticator(t *testing.T, secret string, ttl time.Duration) *Authenticator {
	t.Helper()

	auth, err := New(&config.Config{JWT_SECRET: secret, JWT_TTL: ttl})
	require.NoError(t, err)
	return auth
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(&config.Config{JWT_SECRET: "", JWT_TTL: time.Hour})
	assert.Error(t, err)
}

func TestGenerateAndVerifyRoundTrip(t *testing.T) {
	auth := newTestAuthenticator(t, "test-secret", time.Hour)

	token, err := auth.GenerateToken("user-1", "a@x.com", "Alice", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "user", claims.Role)
}

func TestVerifyWithDifferentSecretFails(t *testing.T) {
	issuer := newTestAuthenticator(t, "secret-one", time.Hour)
	verifier := newTestAuthenticator(t, "secret-two", time.Hour)

	token, err := issuer.GenerateToken("user-1", "a@x.com", "Alice", "user")
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyExpiredToken(t *testing.T) {
	auth := newTestAuthenticator(t, "test-secret", -time.Minute)

	token, err := auth.GenerateToken("user-1", "a@x.com", "Alice", "user")
	require.NoError(t, err)

	_, err = auth.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyMalformedToken(t *testing.T) {
	auth := newTestAuthenticator(t, "test-secret", time.Hour)

	_, err := auth.VerifyAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerifyTamperedToken(t *testing.T) {
	auth := newTestAuthenticator(t, "test-secret", time.Hour)

	token, err := auth.GenerateToken("user-1", "a@x.com", "Alice", "user")
	require.NoError(t, err)

	// Swap the payload segment for a different one; the signature no longer matches
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	other, err := auth.GenerateToken("user-2", "b@x.com", "Bob", "admin")
	require.NoError(t, err)
	otherParts := strings.Split(other, ".")

	tampered := strings.Join([]string{parts[0], otherParts[1], parts[2]}, ".")
	_, err = auth.VerifyAccessToken(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

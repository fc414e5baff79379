package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stardeck/logbook/internal/domain"
)

const testSecret = "test-secret-that-is-long-enough-0"

func signToken(t *testing.T, secret, subject string, expiresIn time.Duration) string {
	t.Helper()

	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Name:  "Test Crewman",
		Email: "crew@example.com",
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyValidToken(t *testing.T) {
	v := NewVerifier(testSecret)

	identity, err := v.Verify(signToken(t, testSecret, "u1", time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "u1", identity.UserID)
	assert.Equal(t, "Test Crewman", identity.Name)
	assert.Equal(t, "crew@example.com", identity.Email)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := NewVerifier(testSecret)

	_, err := v.Verify(signToken(t, "another-secret-that-is-also-long", "u1", time.Hour))
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := NewVerifier(testSecret)

	_, err := v.Verify(signToken(t, testSecret, "u1", -time.Minute))
	assert.Error(t, err)
}

func TestVerifyRejectsEmptyToken(t *testing.T) {
	v := NewVerifier(testSecret)

	_, err := v.Verify("")
	assert.Error(t, err)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	v := NewVerifier(testSecret)

	_, err := v.Verify(signToken(t, testSecret, "", time.Hour))
	assert.Error(t, err)
}

func TestIdentityFromContext(t *testing.T) {
	_, err := IdentityFrom(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	ctx := WithIdentity(context.Background(), &Identity{UserID: "u1"})

	identity, err := IdentityFrom(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UserID)

	userID, err := UserIDFrom(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

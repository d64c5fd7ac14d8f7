package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"agenthub/internal/apperrors"
	"agenthub/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("pw1-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1-secret", hash)

	assert.NoError(t, hasher.Compare(hash, "pw1-secret"))
	assert.ErrorIs(t, hasher.Compare(hash, "wrong"), ErrPasswordMismatch)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := NewTokenService(config.JWT{SecretKey: "test-secret", AccessTokenDuration: 30 * time.Minute, Issuer: "agenthub"}, clock)

	token, err := svc.Issue("alice")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		username, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", username)
	})

	t.Run("expired token", func(t *testing.T) {
		later := NewTokenService(config.JWT{SecretKey: "test-secret", AccessTokenDuration: 30 * time.Minute},
			func() time.Time { return now.Add(31 * time.Minute) })

		_, err := later.Verify(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("tampered token", func(t *testing.T) {
		parts := strings.Split(token, ".")
		tampered := parts[0] + "." + parts[1] + ".c2lnbmF0dXJl"

		_, err := svc.Verify(tampered)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewTokenService(config.JWT{SecretKey: "other", AccessTokenDuration: time.Minute}, clock)

		_, err := other.Verify(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("none algorithm rejected", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Verify(raw)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
	})
}

func TestGenerateOTP(t *testing.T) {
	code, err := GenerateOTP(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9')
	}
}

// ABOUTME: Tests for JWT generation and verification
// ABOUTME: Covers scopes, expiry, wrong secrets, and signing method checks

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	token, err := v.Generate("dispatcher", []string{ScopeRoute}, time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "dispatcher", claims.Subject)
	assert.True(t, claims.HasScope(ScopeRoute))
	assert.False(t, claims.HasScope(ScopeRead))
	require.NotNil(t, claims.ExpiresAt)
}

func TestJWTVerifier_NoExpiry(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	token, err := v.Generate("ops", []string{ScopeRead}, 0)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestJWTVerifier_Expired(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "old",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	token, err := expired.SignedString(testSecret)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	token, err := NewJWTVerifier([]byte("another-secret-another-secret-xx")).Generate("x", nil, time.Hour)
	require.NoError(t, err)

	_, err = NewJWTVerifier(testSecret).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_MissingSubject(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	token, err := v.Generate("", []string{ScopeRoute}, time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrMissingClaim)
}

func TestJWTVerifier_RejectsOtherAlgorithms(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "mallory"},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTVerifier(testSecret).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_Garbage(t *testing.T) {
	_, err := NewJWTVerifier(testSecret).Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

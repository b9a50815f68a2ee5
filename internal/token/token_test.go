package token

import (
	"testing"
	"time"

	"campus-booking/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	m := NewManager("test-secret")

	signed, err := m.Sign(42, model.RoleStudent)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, model.RoleStudent, claims.Role)
	assert.WithinDuration(t, time.Now().Add(TTL), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed, err := NewManager("secret-a").Sign(1, model.RoleAdmin)
	require.NoError(t, err)

	_, err = NewManager("secret-b").Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret")

	past := time.Now().UTC().Add(-2 * time.Hour)
	claims := Claims{
		UserID: 7,
		Role:   model.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	m := NewManager("test-secret")

	claims := Claims{
		UserID: 7,
		Role:   model.Role("superuser"),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewManager("test-secret").Verify("not-a-token")
	assert.Error(t, err)
}

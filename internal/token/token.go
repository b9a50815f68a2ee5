package token

import (
	"errors"
	"fmt"
	"time"

	"campus-booking/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("token did not pass validation")
	ErrInvalidRole  = errors.New("token role is not recognized")
)

var signingMethod = jwt.SigningMethodHS256

// TTL is the fixed lifetime of an access token.
const TTL = time.Hour

// Claims carried by an access token.
type Claims struct {
	UserID int64      `json:"id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies access tokens with a shared secret.
type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// Sign issues a token for the user, valid for TTL.
func (m *Manager) Sign(userID int64, role model.Role) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify parses the token and validates signature, expiry and the role
// enum. Any role outside {student, admin} is rejected here, at the auth
// boundary.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{signingMethod.Alg()}))

	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if _, ok := model.ParseRole(string(claims.Role)); !ok {
		return nil, ErrInvalidRole
	}

	return claims, nil
}

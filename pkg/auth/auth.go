// Package auth holds the credential codec (bcrypt) and session token codec
// (HS256 JWT) behind small, storage-free functions.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/kirana/config"
	"github.com/shashiranjanraj/kirana/pkg/apperr"
)

// Claims holds the typed JWT payload: who the requester is.
type Claims struct {
	UserID string `json:"_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(config.JWTSecret())
}

// GenerateToken creates a signed session token for the given user.
// Tokens carry no expiry: validity is decided solely by signature integrity,
// matching the API contract clients already depend on.
func GenerateToken(userID, role string) (string, error) {
	claims := Claims{UserID: userID, Role: role}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %v", apperr.ErrCodec, err)
	}
	return token, nil
}

// ValidateToken parses and verifies a session token. Every failure —
// malformed structure, wrong secret, tampering — collapses into the single
// apperr.ErrInvalidToken kind; callers never learn why.
func ValidateToken(t string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret(), nil
	})
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, apperr.ErrInvalidToken
	}

	return claims, nil
}

// HashPassword returns a bcrypt digest of the plain-text password. The
// digest embeds its salt and cost, so verification needs no side channel.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: bcrypt: %v", apperr.ErrCodec, err)
	}
	return string(bytes), nil
}

// CheckPassword compares a bcrypt digest against the plain-text candidate.
// A mismatch returns (false, nil); only a malformed digest is an error.
func CheckPassword(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: malformed digest: %v", apperr.ErrCodec, err)
	}
}

package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed, mis-signed, and expired session tokens.
var ErrInvalidToken = errors.New("security: invalid token")

// sessionClaims is the JWT payload for a session token. The token carries
// only the user ID; role and subscription state are re-read on every request
// so revoking access never requires invalidating a token.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// IssueToken signs a session token for the user, valid for the given lifetime.
func IssueToken(secret string, userID uint64, lifetime time.Duration, now time.Time) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, errSign := token.SignedString([]byte(secret))
	if errSign != nil {
		return "", fmt.Errorf("security: sign token: %w", errSign)
	}
	return signed, nil
}

// ParseToken verifies a session token and returns the embedded user ID.
// Verification is a pure function of the token and the signing secret.
func ParseToken(secret, tokenString string) (uint64, error) {
	var claims sessionClaims
	token, errParse := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if errParse != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	userID, errAtoi := strconv.ParseUint(claims.Subject, 10, 64)
	if errAtoi != nil || userID == 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

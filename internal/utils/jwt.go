package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess marks claims issued for API access, as opposed to any
// other signed token purpose. Decode rejects everything else.
const TokenTypeAccess = "access"

var ErrInvalidAccessToken = errors.New("invalid access token")

// Claims is the signed access-token payload. The user id travels in the
// registered "sub" claim.
type Claims struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	TokenType   string `json:"type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user id.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return 0, ErrInvalidAccessToken
	}
	return uint(id), nil
}

// JWTCodec issues and validates HMAC-SHA256 signed access tokens.
// It is constructed once from config and injected where needed.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTCodec(secret string, ttl time.Duration) *JWTCodec {
	return &JWTCodec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured access-token lifetime.
func (j *JWTCodec) TTL() time.Duration {
	return j.ttl
}

// Issue signs an access token for the given user identity.
func (j *JWTCodec) Issue(userID uint, email, displayName string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:       email,
		DisplayName: displayName,
		TokenType:   TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// Decode verifies signature and expiry and returns the claims.
// Malformed, expired, tampered, or non-access tokens all fail with
// ErrInvalidAccessToken; callers do not need to distinguish the causes.
func (j *JWTCodec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidAccessToken
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}

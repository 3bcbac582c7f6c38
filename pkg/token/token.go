package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid is returned for tokens that fail signature, expiry or claim checks.
var ErrInvalid = errors.New("invalid token")

// Claims carries the caller identity used for authorization and audit fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// Generate signs an HS256 token for the given identity.
func Generate(secret, issuer, userID, companyID, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("token: empty secret")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse verifies tokenString and returns its claims. An empty issuer skips
// the issuer check.
func Parse(secret, issuer, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, errors.New("token: empty secret")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !tok.Valid || claims.UserID == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}

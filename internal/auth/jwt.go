package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Brodino96/TasteTracker/pkg/middleware"
)

// ErrMissingSubject is returned for tokens without a "sub" claim.
var ErrMissingSubject = errors.New("token has no subject")

// Claims are the claims read from an identity-platform access token. The
// user id is the registered "sub" claim.
type Claims struct {
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

// UserMetadata carries optional profile fields set at sign-up.
type UserMetadata struct {
	FullName string `json:"full_name"`
	Name     string `json:"name"`
}

// DisplayName prefers the full name over the short one.
func (m UserMetadata) DisplayName() string {
	if n := strings.TrimSpace(m.FullName); n != "" {
		return n
	}
	return strings.TrimSpace(m.Name)
}

// Verifier validates HS256 tokens issued by the identity platform. It never
// issues tokens.
type Verifier struct {
	secret []byte
	opts   []jwt.ParserOption
}

// NewVerifier creates a verifier for secret. Empty issuer or audience
// disables that check.
func NewVerifier(secret, issuer, audience string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &Verifier{secret: []byte(secret), opts: opts}
}

// Verify parses and validates a token, returning its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid access token claims")
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// TokenValidator adapts the verifier to the auth middleware.
func (v *Verifier) TokenValidator() middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		c, err := v.Verify(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:      c.Subject,
			Email:       c.Email,
			DisplayName: c.UserMetadata.DisplayName(),
		}, nil
	}
}

// Package identity trusts an external provider for authentication: tokens
// are verified here, never issued. Every mutating call in the core requires
// a resolved Caller.
package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"

	"gamelounge/domain"
	errs "gamelounge/errors"
)

// Caller is the stable identity attached to every operation. The core
// trusts it and performs no further verification.
type Caller struct {
	UserID string
	Badges []string
}

func (c Caller) IsModerator() bool {
	return lo.Contains(c.Badges, domain.ModeratorBadge)
}

type Claims struct {
	Badges []string `json:"badges"`
	jwt.RegisteredClaims
}

// Verifier validates HMAC-signed bearer tokens from the portal's identity
// provider.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses the token and extracts the caller. Any failure, including
// an empty subject, maps to ErrNotAuthorized.
func (v *Verifier) Verify(token string) (Caller, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Caller{}, fmt.Errorf("%w: %v", errs.ErrNotAuthorized, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return Caller{}, fmt.Errorf("%w: missing subject", errs.ErrNotAuthorized)
	}
	return Caller{UserID: claims.Subject, Badges: claims.Badges}, nil
}

package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	identitydomain "github.com/lodgera/accesscore/internal/identity/domain"
)

// Kind discriminates access tokens from refresh tokens. A token of one
// kind is never accepted where the other is expected.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims holds the JWT claims carried by both token kinds.
type Claims struct {
	jwt.RegisteredClaims
	Role            string `json:"role"`
	EstablishmentID string `json:"establishment_id,omitempty"`
	Kind            Kind   `json:"kind"`
}

// Principal converts verified claims into a Principal. It is the only
// place a Principal is derived from a token, so the establishment id
// always comes from verified claims, never from request input.
func (c *Claims) Principal() (identitydomain.Principal, error) {
	role, err := identitydomain.ParseRole(c.Role)
	if err != nil {
		return identitydomain.Principal{}, fmt.Errorf("token claims: %w", err)
	}
	p := identitydomain.Principal{
		UserID:          c.Subject,
		Role:            role,
		EstablishmentID: c.EstablishmentID,
	}
	if err := p.Validate(); err != nil {
		return identitydomain.Principal{}, err
	}
	return p, nil
}

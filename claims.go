package authgate

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the payload of an access token: the full identity plus
// the registered claims.
type AccessClaims struct {
	jwt.RegisteredClaims
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// Identity rebuilds the canonical identity from the claims.
func (c *AccessClaims) Identity() Identity {
	return Identity{
		UserID:   c.RegisteredClaims.Subject,
		Username: c.Username,
		Roles:    c.Roles,
	}
}

// Expires returns the expiration time
func (c *AccessClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// RefreshClaims is the payload of a refresh token. The type deliberately has
// no username or roles fields: a refresh token can only mint a new pair for
// its subject, never grant access to protected resources by itself.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// Subject returns the refresh token's subject claim.
func (c *RefreshClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

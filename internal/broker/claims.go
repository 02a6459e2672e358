package broker

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/desertthunder/moodarc/internal/shared"
)

// Claims are the display-only fields carried by the broker's access token.
type Claims struct {
	Subject string
	Email   string
	Expiry  time.Time
}

// Expired reports whether the token's expiry has passed. A token without an
// expiry never counts as expired here.
func (c *Claims) Expired() bool {
	return !c.Expiry.IsZero() && time.Now().After(c.Expiry)
}

type brokerClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ParseClaims reads subject, email, and expiry out of a broker access token.
// The signature is not verified: only the broker holds the signing secret
// and validates tokens server-side, the client just reports what it carries.
func ParseClaims(token string) (*Claims, error) {
	parsed := &brokerClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, parsed); err != nil {
		return nil, fmt.Errorf("%w: could not parse broker token: %v", shared.ErrAuthFailed, err)
	}

	claims := &Claims{Subject: parsed.Subject, Email: parsed.Email}
	if parsed.ExpiresAt != nil {
		claims.Expiry = parsed.ExpiresAt.Time
	}
	return claims, nil
}

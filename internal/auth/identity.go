// Package auth turns bearer credentials into an authenticated identity.
//
// Decoders understand the token format and its claims. The Authenticator
// sits in front of them and collapses every failure into ErrUnauthenticated,
// so callers never learn why a token was refused.
package auth

import (
	"errors"
	"time"
)

// Identity is the caller derived from a bearer token. It lives for one request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrMalformedToken   = errors.New("malformed token")
	ErrMissingClaims    = errors.New("token missing identity or email claim")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidSignature = errors.New("token signature or issuer rejected")
)

// Decoder validates a compact token and returns the identity it carries.
type Decoder interface {
	Decode(token string) (Identity, error)
}

// identityClaimKeys lists the claims that may carry the user id, in order of precedence.
var identityClaimKeys = []string{"user_id", "sub", "uid"}

// identityFromClaims extracts the identity. Expiry is checked only when
// checkExpiry is set; signed decoders leave it to the jwt parser.
func identityFromClaims(claims map[string]any, now time.Time, checkExpiry bool) (Identity, error) {
	var id string
	for _, key := range identityClaimKeys {
		if v, ok := claims[key].(string); ok && v != "" {
			id = v
			break
		}
	}
	email, _ := claims["email"].(string)
	if id == "" || email == "" {
		return Identity{}, ErrMissingClaims
	}

	if checkExpiry {
		if exp, ok := numericClaim(claims["exp"]); ok && exp < float64(now.Unix()) {
			return Identity{}, ErrTokenExpired
		}
	}

	return Identity{ID: id, Email: email}, nil
}

// numericClaim compares in float64 so far-future values outside the int64
// range are not wrapped into the past.
func numericClaim(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

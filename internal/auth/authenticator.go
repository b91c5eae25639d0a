package auth

import (
	"errors"
	"log/slog"
	"strings"
)

const bearerPrefix = "Bearer "

type Authenticator struct {
	decoder Decoder
	logger  *slog.Logger
}

func NewAuthenticator(decoder Decoder, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{decoder: decoder, logger: logger}
}

// Authenticate resolves an Authorization header value to an identity.
// Every failure is reported as ErrUnauthenticated; the cause is only logged.
func (a *Authenticator) Authenticate(header string) (identity Identity, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("token decoder panicked", "panic", r)
			identity, err = Identity{}, ErrUnauthenticated
		}
	}()

	if !strings.HasPrefix(header, bearerPrefix) {
		a.logger.Debug("no bearer authorization header")
		return Identity{}, ErrUnauthenticated
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		a.logger.Debug("empty bearer token")
		return Identity{}, ErrUnauthenticated
	}

	identity, err = a.decoder.Decode(token)
	if err != nil {
		a.logger.Warn("token rejected", "reason", reasonOf(err), "error", err)
		return Identity{}, ErrUnauthenticated
	}
	return identity, nil
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrMissingClaims):
		return "missing_claims"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "unknown"
	}
}

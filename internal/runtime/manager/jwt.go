package manager

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
)

// verifySignedRequest checks a HipChat signed request: an HS256 JWT issued
// by the installation's oauth id and signed with its oauth secret.
func verifySignedRequest(token string, auth hipchat.Authority) error {
	if token == "" {
		return fmt.Errorf("%w: missing token", errspkg.ErrInvalidSignature)
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(auth.OAuthSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(auth.OAuthID),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", errspkg.ErrInvalidSignature, err)
	}
	return nil
}

// SignRequest issues a token the way HipChat does. Useful for tests and
// local tooling that replays webhooks.
func SignRequest(auth hipchat.Authority, claims jwt.RegisteredClaims) (string, error) {
	claims.Issuer = auth.OAuthID
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(auth.OAuthSecret))
}

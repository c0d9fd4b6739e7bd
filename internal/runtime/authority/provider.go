// Package authority persists HipChat installations (oauth id + secret) so
// webhook requests can be attributed and verified.
package authority

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
)

// Provider stores installation credentials.
type Provider interface {
	Register(ctx context.Context, auth hipchat.Authority) error
	Unregister(ctx context.Context, oauthID string) error
	Get(ctx context.Context, oauthID string) (hipchat.Authority, error)
	List(ctx context.Context) ([]hipchat.Authority, error)
}

var validate = validator.New()

// Validate checks the struct tags on auth. Failures wrap
// errors.ErrMalformedPayload; storage failures never do.
func Validate(auth hipchat.Authority) error {
	if err := validate.Struct(auth); err != nil {
		return fmt.Errorf("%w: invalid authority %q: %w", errspkg.ErrMalformedPayload, auth.OAuthID, err)
	}
	return nil
}

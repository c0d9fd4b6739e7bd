package errors

import (
	sterrors "errors"
	"fmt"
)

var (
	ErrBotRequired              = sterrors.New("hiptail: bot is required")
	ErrHandlerRequired          = sterrors.New("hiptail: hook handler is required")
	ErrInvalidHookKey           = sterrors.New("hiptail: invalid hook key")
	ErrUnsupportedMatcher       = sterrors.New("hiptail: unsupported matcher type")
	ErrUnsupportedEvent         = sterrors.New("hiptail: unsupported event for hook")
	ErrInvalidAuthorityProvider = sterrors.New("hiptail: authority provider hook returned an unsupported value")
	ErrAuthorityProviderNeeded  = sterrors.New("hiptail: authority provider is required")
	ErrAuthorityNotFound        = sterrors.New("hiptail: authority not found")
	ErrManagerRequired          = sterrors.New("hiptail: manager is required")
	ErrInvalidSignature         = sterrors.New("hiptail: invalid signed request")
	ErrMalformedPayload         = sterrors.New("hiptail: malformed payload")
	ErrUnknownEvent             = sterrors.New("hiptail: unknown webhook event")
	ErrConfigRequired           = sterrors.New("hiptail: configuration is required")
	ErrLoggerRequired           = sterrors.New("hiptail: logger is required")
	ErrPublisherRequired        = sterrors.New("hiptail: publisher is required")
	ErrTopicRequired            = sterrors.New("hiptail: topic is required")
	ErrGatewayBuilding          = sterrors.New("hiptail: gateway requested while it is being built")
)

// ConfigValidationError marks failures raised while registering hooks or
// applying configuration. They are fatal to startup.
type ConfigValidationError struct {
	Err error
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("hiptail: invalid configuration: %v", e.Err)
}

func (e ConfigValidationError) Unwrap() error {
	return e.Err
}

// NewConfigValidationError wraps err, returning nil for a nil error.
func NewConfigValidationError(err error) error {
	if err == nil {
		return nil
	}
	return ConfigValidationError{Err: err}
}

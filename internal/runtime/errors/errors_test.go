package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrBotRequired", ErrBotRequired, "hiptail: bot is required"},
		{"ErrHandlerRequired", ErrHandlerRequired, "hiptail: hook handler is required"},
		{"ErrInvalidHookKey", ErrInvalidHookKey, "hiptail: invalid hook key"},
		{"ErrUnsupportedMatcher", ErrUnsupportedMatcher, "hiptail: unsupported matcher type"},
		{"ErrUnsupportedEvent", ErrUnsupportedEvent, "hiptail: unsupported event for hook"},
		{"ErrAuthorityNotFound", ErrAuthorityNotFound, "hiptail: authority not found"},
		{"ErrManagerRequired", ErrManagerRequired, "hiptail: manager is required"},
		{"ErrInvalidSignature", ErrInvalidSignature, "hiptail: invalid signed request"},
		{"ErrConfigRequired", ErrConfigRequired, "hiptail: configuration is required"},
		{"ErrLoggerRequired", ErrLoggerRequired, "hiptail: logger is required"},
		{"ErrGatewayBuilding", ErrGatewayBuilding, "hiptail: gateway requested while it is being built"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestConfigValidationError(t *testing.T) {
	inner := errors.New("unknown key")
	err := ConfigValidationError{Err: inner}

	want := "hiptail: invalid configuration: unknown key"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if unwrapped := err.Unwrap(); unwrapped != inner {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, inner)
	}
}

func TestNewConfigValidationError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if err := NewConfigValidationError(nil); err != nil {
			t.Errorf("NewConfigValidationError(nil) = %v, want nil", err)
		}
	})

	t.Run("sentinel survives wrapping", func(t *testing.T) {
		err := NewConfigValidationError(fmt.Errorf("%w: int", ErrUnsupportedMatcher))

		var cfgErr ConfigValidationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigValidationError, got %T", err)
		}
		if !errors.Is(err, ErrUnsupportedMatcher) {
			t.Error("errors.Is should match the wrapped sentinel")
		}
	})
}

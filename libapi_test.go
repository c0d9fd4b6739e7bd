package hiptailbot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
)

func useFreshBot(t *testing.T) *Bot {
	t.Helper()
	b := NewBot(BotDependencies{})
	SetDelegationTarget(b)
	t.Cleanup(func() { SetDelegationTarget(nil) })
	return b
}

func TestDelegationTargetDefaultsToDefaultBot(t *testing.T) {
	if DelegationTarget() != DSL(DefaultBot()) {
		t.Fatal("expected the default bot to be the delegation target")
	}

	b := useFreshBot(t)
	if DelegationTarget() != DSL(b) {
		t.Fatal("expected delegation target to be replaced")
	}
}

func TestPackageDSLForwardsToTarget(t *testing.T) {
	b := useFreshBot(t)

	err := OnMessage(regexp.MustCompile(`^echo (.*)`), func(_ context.Context, hc HookContext[*RoomMessageEvent]) (Result, error) {
		return Continue(TextReply(hc.Matches[1])), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.Registry().Len(HookOnMessage); got != 1 {
		t.Fatalf("expected one message hook on target, got %d", got)
	}
	if got := DefaultBot().Registry().Len(HookOnMessage); got != 0 {
		t.Fatalf("expected default bot to stay untouched, got %d", got)
	}

	ev := &RoomMessageEvent{Message: Message{Text: "echo hello"}}
	result, err := b.Dispatch(context.Background(), HookOnMessage, ev)
	if err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if reply, ok := result.(Reply); !ok || reply.Message != "hello" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestPackageDSLEndToEnd(t *testing.T) {
	b := useFreshBot(t)
	ConfigureManager(ManagerConfig{SkipSignatureVerification: true, Name: "echo"})
	Configure(WebConfig{BaseURL: "https://bot.example.com"})

	var setupRan bool
	if err := Setup(func(context.Context, *Bot) error { setupRan = true; return nil }); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := AuthorityProvider(func(context.Context) (Provider, error) { return NewMemoryProvider(), nil }); err != nil {
		t.Fatalf("authority provider: %v", err)
	}
	for _, err := range []error{
		OnInstalled(func(context.Context, HookContext[Authority]) (Result, error) { return Continue(nil), nil }),
		OnUninstalled(func(context.Context, HookContext[string]) (Result, error) { return Continue(nil), nil }),
		OnNotification(nil, func(context.Context, HookContext[*RoomNotificationEvent]) (Result, error) { return Continue(nil), nil }),
		OnTopic("x", func(context.Context, HookContext[*RoomTopicChangeEvent]) (Result, error) { return Continue(nil), nil }),
		OnRoomEnter(func(context.Context, HookContext[*RoomEnterEvent]) (Result, error) { return Continue(nil), nil }),
		OnRoomExit(func(context.Context, HookContext[*RoomExitEvent]) (Result, error) { return Continue(nil), nil }),
	} {
		if err != nil {
			t.Fatalf("registration failed: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	b.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/capabilities", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !setupRan {
		t.Fatal("expected setup hook to run on first request")
	}

	var desc Descriptor
	if err := Unmarshal(rec.Body.Bytes(), &desc); err != nil {
		t.Fatalf("decode descriptor: %v", err)
	}
	if desc.Name != "echo" {
		t.Fatalf("unexpected descriptor name %q", desc.Name)
	}
	if !strings.HasPrefix(desc.Links.Self, "https://bot.example.com") {
		t.Fatalf("unexpected self link %q", desc.Links.Self)
	}
}

func TestErrorExports(t *testing.T) {
	b := useFreshBot(t)
	err := b.OnMessage(3.14, func(context.Context, HookContext[*RoomMessageEvent]) (Result, error) {
		return Continue(nil), nil
	})
	if !errors.Is(err, ErrUnsupportedMatcher) {
		t.Fatalf("expected unsupported matcher error, got %v", err)
	}
	var cfgErr ConfigValidationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigValidationError, got %T", err)
	}
}

func TestEncodingExportAliases(t *testing.T) {
	payload := map[string]string{"hello": "world"}
	if _, err := Marshal(payload); err != nil {
		t.Fatalf("marshal alias failed: %v", err)
	}
	if _, err := MarshalIndent(payload, "", "  "); err != nil {
		t.Fatalf("marshal indent alias failed: %v", err)
	}
	if err := Unmarshal([]byte(`{"hello":"world"}`), &payload); err != nil {
		t.Fatalf("unmarshal alias failed: %v", err)
	}
}

func TestMetadataExport(t *testing.T) {
	md := NewMetadata(MetadataKeyHook, "on_message")
	if md[MetadataKeyHook] != "on_message" {
		t.Fatalf("expected metadata to contain key, got %#v", md)
	}
}

func TestConfigExports(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if CreateULID() == "" {
		t.Fatal("expected ulid")
	}
}

package runtime

import (
	"net/http"

	"github.com/dayflower/hiptail-bot/internal/runtime/jsoncodec"
)

// HookInfos reports every hook key with its entry count and dispatch stats.
func (b *Bot) HookInfos() []HookInfo {
	infos := make([]HookInfo, 0, len(HookKeys))
	for _, key := range HookKeys {
		infos = append(infos, HookInfo{
			Key:     key,
			Entries: b.registry.Len(key),
			Stats:   b.stats.Stats(key),
		})
	}
	return infos
}

// IntrospectionHandler serves HookInfos as JSON. The gateway mounts it on
// /api/hooks when introspection is enabled.
func (b *Bot) IntrospectionHandler() http.Handler {
	return http.HandlerFunc(b.handleGetHooks)
}

func (b *Bot) handleGetHooks(w http.ResponseWriter, r *http.Request) {
	payload, err := jsoncodec.Marshal(b.HookInfos())
	if err != nil {
		b.Logger.Error("Failed to encode hooks", err, nil)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

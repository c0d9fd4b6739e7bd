package manager

import (
	"strings"

	"github.com/samber/lo"

	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
)

const (
	defaultKey   = "hiptail-bot"
	defaultName  = "hiptail bot"
	defaultScope = "send_notification"
)

// Descriptor builds the capabilities document served at baseURL. Webhooks
// are declared only for events with a registered callback.
func (m *Manager) Descriptor(baseURL string) hipchat.Descriptor {
	base := strings.TrimRight(baseURL, "/")
	cfg := m.cfg

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{defaultScope}
	}
	allowRoom := cfg.AllowRoom || !cfg.AllowGlobal

	desc := hipchat.Descriptor{
		Key:         lo.CoalesceOrEmpty(cfg.Key, defaultKey),
		Name:        lo.CoalesceOrEmpty(cfg.Name, defaultName),
		Description: cfg.Description,
		Links: hipchat.Links{
			Self:     base + "/capabilities",
			Homepage: cfg.Homepage,
		},
		Capabilities: hipchat.Capabilities{
			HipChatAPIConsumer: hipchat.APIConsumer{Scopes: append([]string(nil), scopes...)},
			Installable: hipchat.Installable{
				CallbackURL: base + "/installed",
				AllowRoom:   allowRoom,
				AllowGlobal: cfg.AllowGlobal,
			},
		},
	}
	if cfg.VendorName != "" {
		desc.Vendor = &hipchat.Vendor{Name: cfg.VendorName, URL: cfg.VendorURL}
	}

	desc.Capabilities.Webhook = lo.Map(m.HandledEvents(), func(typ hipchat.EventType, _ int) hipchat.Webhook {
		return hipchat.Webhook{
			Event:          typ,
			URL:            base + "/event",
			Name:           string(typ),
			Authentication: "jwt",
		}
	})
	return desc
}

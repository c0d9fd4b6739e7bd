package manager

import (
	"time"

	"github.com/samber/lo"

	"github.com/dayflower/hiptail-bot/internal/runtime/authority"
	"github.com/dayflower/hiptail-bot/internal/runtime/logging"
)

// Config holds the manager settings. The bot copies it before building the
// manager, so later edits never reach a running instance.
type Config struct {
	AuthorityProvider authority.Provider
	Logger            logging.ServiceLogger

	// SkipSignatureVerification accepts webhooks without a valid signed
	// request. Intended for local development.
	SkipSignatureVerification bool

	Key         string
	Name        string
	Description string
	VendorName  string
	VendorURL   string
	Homepage    string
	Scopes      []string
	AllowRoom   bool
	AllowGlobal bool

	// Clock overrides time.Now for installation timestamps.
	Clock func() time.Time
}

// Merge overlays the non-zero fields of other onto c. Flags only ever turn
// on. The result shares no slices with either input.
func (c Config) Merge(other Config) Config {
	out := c
	out.AuthorityProvider = lo.Ternary(other.AuthorityProvider != nil, other.AuthorityProvider, c.AuthorityProvider)
	out.Logger = lo.Ternary(other.Logger != nil, other.Logger, c.Logger)
	out.Clock = lo.Ternary(other.Clock != nil, other.Clock, c.Clock)
	out.SkipSignatureVerification = c.SkipSignatureVerification || other.SkipSignatureVerification
	out.AllowRoom = c.AllowRoom || other.AllowRoom
	out.AllowGlobal = c.AllowGlobal || other.AllowGlobal

	out.Key = lo.CoalesceOrEmpty(other.Key, c.Key)
	out.Name = lo.CoalesceOrEmpty(other.Name, c.Name)
	out.Description = lo.CoalesceOrEmpty(other.Description, c.Description)
	out.VendorName = lo.CoalesceOrEmpty(other.VendorName, c.VendorName)
	out.VendorURL = lo.CoalesceOrEmpty(other.VendorURL, c.VendorURL)
	out.Homepage = lo.CoalesceOrEmpty(other.Homepage, c.Homepage)

	out.Scopes = append([]string(nil), c.Scopes...)
	if len(other.Scopes) > 0 {
		out.Scopes = append([]string(nil), other.Scopes...)
	}
	return out
}

// Clone returns a copy that shares no slices with c.
func (c Config) Clone() Config {
	return Config{}.Merge(c)
}

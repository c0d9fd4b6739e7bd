package authority

import (
	"context"
	"sort"
	"sync"

	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
)

// MemoryProvider keeps installations in process memory. It is the fallback
// when no provider is configured; installations do not survive a restart.
type MemoryProvider struct {
	mu          sync.RWMutex
	authorities map[string]hipchat.Authority
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{authorities: make(map[string]hipchat.Authority)}
}

func (p *MemoryProvider) Register(_ context.Context, auth hipchat.Authority) error {
	if err := Validate(auth); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authorities[auth.OAuthID] = auth
	return nil
}

func (p *MemoryProvider) Unregister(_ context.Context, oauthID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.authorities, oauthID)
	return nil
}

func (p *MemoryProvider) Get(_ context.Context, oauthID string) (hipchat.Authority, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	auth, ok := p.authorities[oauthID]
	if !ok {
		return hipchat.Authority{}, errspkg.ErrAuthorityNotFound
	}
	return auth, nil
}

// List returns installations ordered by oauth id.
func (p *MemoryProvider) List(_ context.Context) ([]hipchat.Authority, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]hipchat.Authority, 0, len(p.authorities))
	for _, auth := range p.authorities {
		out = append(out, auth)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OAuthID < out[j].OAuthID })
	return out, nil
}

package player

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultRegistrySize = 10000

// Registry holds one HeroPlayer per visitor. Players not touched within the
// TTL, or pushed out by newer visitors, are dropped.
type Registry struct {
	mu      sync.Mutex
	players *expirable.LRU[string, *HeroPlayer]

	retries uint
	delay   time.Duration
}

// RegistryOption customises new registries.
type RegistryOption func(*Registry)

// WithUnmuteRetry sets how often and how far apart new players retry an
// unmute while waiting for the embedded player.
func WithUnmuteRetry(retries uint, delay time.Duration) RegistryOption {
	return func(r *Registry) {
		r.retries = retries
		r.delay = delay
	}
}

// NewRegistry creates a registry. A non-positive size uses the default.
func NewRegistry(size int, ttl time.Duration, opts ...RegistryOption) *Registry {
	if size <= 0 {
		size = defaultRegistrySize
	}
	r := &Registry{
		players: expirable.NewLRU[string, *HeroPlayer](size, nil, ttl),
		retries: defaultUnmuteRetries,
		delay:   defaultUnmuteDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// For returns the visitor's player, creating an idle one if needed. Each
// call renews the player's TTL.
func (r *Registry) For(visitorID string) *HeroPlayer {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players.Get(visitorID)
	if !ok {
		p = NewHeroPlayer()
		p.retries, p.delay = r.retries, r.delay
	}
	r.players.Add(visitorID, p)
	return p
}

// Len returns the number of tracked players.
func (r *Registry) Len() int {
	return r.players.Len()
}

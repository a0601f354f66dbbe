package homepage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"marquee/config"
	"marquee/models"
	"marquee/services/trailers"
)

// ErrNoTrending is returned when the trending list has nothing to feature.
var ErrNoTrending = errors.New("no trending titles")

// HeroSelector picks the featured title for the banner.
type HeroSelector struct {
	catalog    Catalog
	prober     *trailers.Prober
	candidates int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeroSelector builds a selector. A nil rng is seeded from the clock.
func NewHeroSelector(catalog Catalog, prober *trailers.Prober, cfg config.HomepageSettings, rng *rand.Rand) *HeroSelector {
	candidates := cfg.HeroCandidates
	if candidates <= 0 {
		candidates = config.DefaultHeroCount
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &HeroSelector{
		catalog:    catalog,
		prober:     prober,
		candidates: candidates,
		rng:        rng,
	}
}

// Select picks a random trending title with a trailer. When none of the
// candidates has one, a random candidate is featured without video.
func (h *HeroSelector) Select(ctx context.Context) (*models.Featured, error) {
	items, err := h.catalog.Trending(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch trending: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNoTrending
	}
	if len(items) > h.candidates {
		items = items[:h.candidates]
	}

	probes := h.prober.ProbeAll(ctx, items, 0)
	if len(probes) > 0 {
		pick := probes[h.intn(len(probes))]
		return &models.Featured{
			Item:       pick.Item,
			TrailerKey: pick.TrailerKey,
			EmbedURL:   trailers.HeroEmbedURL(pick.TrailerKey),
			ImageURL:   h.catalog.ImageURL(pick.Item.BackdropPath),
		}, nil
	}

	item := items[h.intn(len(items))]
	log.Printf("[homepage] no trending trailers among %d candidates; featuring %q image-only", len(items), item.Title)
	return &models.Featured{
		Item:     item,
		ImageURL: h.catalog.ImageURL(item.BackdropPath),
	}, nil
}

func (h *HeroSelector) intn(n int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Intn(n)
}

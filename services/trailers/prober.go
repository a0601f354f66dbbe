package trailers

import (
	"context"
	"log"

	"github.com/sourcegraph/conc/pool"

	"marquee/internal/metrics"
	"marquee/models"
)

// VideoLister lists the video records of a title.
type VideoLister interface {
	Videos(ctx context.Context, kind models.MediaKind, id int64) ([]models.VideoRecord, error)
}

// Prober answers "does this title have a playable trailer?" with at most one
// catalog request per title over the life of its cache.
type Prober struct {
	videos      VideoLister
	cache       *Cache
	concurrency int
}

// NewProber wires a prober to a video source and cache. A nil cache gets a
// fresh one; concurrency below 1 probes sequentially.
func NewProber(videos VideoLister, cache *Cache, concurrency int) *Prober {
	if cache == nil {
		cache = NewCache()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Prober{videos: videos, cache: cache, concurrency: concurrency}
}

// Cache exposes the underlying trailer cache.
func (p *Prober) Cache() *Cache {
	return p.cache
}

// EnsureHasTrailer returns the trailer key of item and whether it has one.
// Failed lookups are cached as "no trailer" and not retried until the cache
// forgets its failures.
//
// Two concurrent callers for the same uncached title may both hit the
// catalog; both store the same answer.
func (p *Prober) EnsureHasTrailer(ctx context.Context, item models.CatalogItem) (string, bool) {
	if outcome := p.cache.Lookup(item.Kind, item.ID); outcome.Resolved() {
		return outcome.Key, outcome.State == HasTrailer
	}

	records, err := p.videos.Videos(ctx, item.Kind, item.ID)
	if err != nil {
		log.Printf("[trailers] video lookup failed kind=%s id=%d: %v", item.Kind, item.ID, err)
		metrics.RecordTrailerProbe("error")
		p.cache.StoreFailure(item.Kind, item.ID)
		return "", false
	}

	key := SelectBestKey(records)
	p.cache.Store(item.Kind, item.ID, key)
	if key == "" {
		metrics.RecordTrailerProbe("none")
		return "", false
	}
	metrics.RecordTrailerProbe("found")
	return key, true
}

// Lookup resolves a single title and reports its outcome.
func (p *Prober) Lookup(ctx context.Context, item models.CatalogItem) models.TrailerLookup {
	key, ok := p.EnsureHasTrailer(ctx, item)
	return models.TrailerLookup{
		ID:         item.ID,
		Kind:       item.Kind,
		HasTrailer: ok,
		TrailerKey: key,
		EmbedURL:   ModalEmbedURL(key),
	}
}

// Probe is the per-item result of ProbeAll.
type Probe struct {
	Item       models.CatalogItem
	TrailerKey string
}

// ProbeAll checks up to limit items concurrently and returns those that have a
// trailer, in the same relative order as the input. A non-positive limit
// probes every item.
func (p *Prober) ProbeAll(ctx context.Context, items []models.CatalogItem, limit int) []Probe {
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}
	candidates := items[:limit]
	results := make([]string, len(candidates))

	wp := pool.New().WithMaxGoroutines(p.concurrency)
	for i, item := range candidates {
		wp.Go(func() {
			if key, ok := p.EnsureHasTrailer(ctx, item); ok {
				results[i] = key
			}
		})
	}
	wp.Wait()

	eligible := make([]Probe, 0, len(candidates))
	for i, key := range results {
		if key != "" {
			eligible = append(eligible, Probe{Item: candidates[i], TrailerKey: key})
		}
	}
	return eligible
}

package homepage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"

	"marquee/config"
	"marquee/internal/metrics"
	"marquee/models"
	"marquee/services/trailers"
)

// ErrEmptyHomepage is returned when a build produced neither a hero nor rows.
var ErrEmptyHomepage = errors.New("homepage build produced no content")

// Builder owns the trailer cache and the most recently published homepage.
type Builder struct {
	catalog     Catalog
	prober      *trailers.Prober
	sections    *SectionBuilder
	hero        *HeroSelector
	concurrency int
	now         func() time.Time

	current atomic.Pointer[models.Homepage]
}

// NewBuilder wires the section builder and hero selector around one shared
// trailer cache. rng may be nil.
func NewBuilder(catalog Catalog, cfg config.HomepageSettings, rng *rand.Rand) *Builder {
	prober := trailers.NewProber(catalog, trailers.NewCache(), cfg.ProbeConcurrency)
	concurrency := cfg.SectionConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Builder{
		catalog:     catalog,
		prober:      prober,
		sections:    NewSectionBuilder(catalog, prober, cfg),
		hero:        NewHeroSelector(catalog, prober, cfg, rng),
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Prober exposes the shared trailer prober for the details and trailer endpoints.
func (b *Builder) Prober() *trailers.Prober {
	return b.prober
}

// Current returns the last published homepage, or nil before the first build.
func (b *Builder) Current() *models.Homepage {
	return b.current.Load()
}

// Build assembles a fresh homepage and publishes it. The hero and the rows
// are built concurrently. Titles whose trailer lookup failed earlier are
// probed again. A build that yields nothing keeps the previous
// snapshot and returns an error.
func (b *Builder) Build(ctx context.Context) (*models.Homepage, error) {
	start := time.Now()
	if n := b.prober.Cache().ForgetFailures(); n > 0 {
		log.Printf("[homepage] retrying %d titles whose trailer lookup failed", n)
	}

	var (
		hero        *models.Featured
		heroErr     error
		sections    []models.Section
		sectionsErr error
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		hero, heroErr = b.hero.Select(ctx)
	})
	wg.Go(func() {
		sections, sectionsErr = b.BuildSections(ctx)
	})
	wg.Wait()

	if heroErr != nil {
		log.Printf("[homepage] hero omitted: %v", heroErr)
	}
	if sectionsErr != nil {
		log.Printf("[homepage] rows omitted: %v", sectionsErr)
	}
	if hero == nil && len(sections) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrEmptyHomepage, errors.Join(heroErr, sectionsErr))
	}

	page := &models.Homepage{
		Hero:     hero,
		Sections: sections,
		BuiltAt:  b.now().UTC(),
	}
	b.current.Store(page)

	elapsed := time.Since(start)
	metrics.RecordHomepageBuild(len(sections), elapsed.Seconds())
	log.Printf("[homepage] built %d rows (hero=%t video=%t) in %s",
		len(sections), hero != nil, hero != nil && hero.HasVideo(), elapsed.Round(time.Millisecond))
	return page, nil
}

// BuildSections lists the genres and builds one row per genre, keeping the
// catalog's genre order. Genres with nothing to show are skipped.
func (b *Builder) BuildSections(ctx context.Context) ([]models.Section, error) {
	categories, err := b.catalog.Genres(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}

	results := make([]*models.Section, len(categories))
	p := pool.New().WithMaxGoroutines(b.concurrency)
	for i, category := range categories {
		p.Go(func() {
			if section, ok := b.sections.Build(ctx, category); ok {
				results[i] = section
			}
		})
	}
	p.Wait()

	sections := make([]models.Section, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, section := range results {
		if section == nil {
			continue
		}
		section.ID = uniqueID(section.ID, section.CategoryID, seen)
		seen[section.ID] = struct{}{}
		sections = append(sections, *section)
	}
	return sections, nil
}

// uniqueID returns id, or when it is taken, id suffixed with the category
// and then a counter until nothing in seen matches.
func uniqueID(id string, categoryID int64, seen map[string]struct{}) string {
	if _, dup := seen[id]; !dup {
		return id
	}
	base := id + "-" + strconv.FormatInt(categoryID, 10)
	candidate := base
	for n := 2; ; n++ {
		if _, dup := seen[candidate]; !dup {
			return candidate
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

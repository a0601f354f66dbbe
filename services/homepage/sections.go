package homepage

import (
	"context"
	"log"
	"strconv"

	"marquee/config"
	"marquee/models"
	"marquee/services/trailers"
	"marquee/utils"
)

// SectionBuilder turns one genre into a row of titles that all have a
// playable trailer.
type SectionBuilder struct {
	catalog    Catalog
	prober     *trailers.Prober
	probeLimit int
	maxItems   int
}

// NewSectionBuilder uses the probe limit and row size from cfg.
func NewSectionBuilder(catalog Catalog, prober *trailers.Prober, cfg config.HomepageSettings) *SectionBuilder {
	probeLimit := cfg.ProbeLimit
	if probeLimit <= 0 || probeLimit > config.DefaultProbeLimit {
		probeLimit = config.DefaultProbeLimit
	}
	maxItems := cfg.MaxRowItems
	if maxItems <= 0 {
		maxItems = config.DefaultMaxRowItems
	}
	return &SectionBuilder{
		catalog:    catalog,
		prober:     prober,
		probeLimit: probeLimit,
		maxItems:   maxItems,
	}
}

// Build returns the section for category, or false when nothing in it can be
// shown. Catalog failures are logged and skip only this section.
func (b *SectionBuilder) Build(ctx context.Context, category models.Category) (*models.Section, bool) {
	items, err := b.catalog.Discover(ctx, category.ID)
	if err != nil {
		log.Printf("[homepage] discover failed genre=%d (%s): %v", category.ID, category.Name, err)
		return nil, false
	}

	withBackdrop := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if item.HasBackdrop() {
			withBackdrop = append(withBackdrop, item)
		}
	}
	if len(withBackdrop) == 0 {
		log.Printf("[homepage] skipping genre=%d (%s): no items with backdrops", category.ID, category.Name)
		return nil, false
	}

	probes := b.prober.ProbeAll(ctx, withBackdrop, b.probeLimit)
	if len(probes) > b.maxItems {
		probes = probes[:b.maxItems]
	}
	if len(probes) == 0 {
		log.Printf("[homepage] skipping genre=%d (%s): no items with trailers", category.ID, category.Name)
		return nil, false
	}

	survivors := make([]models.CatalogItem, len(probes))
	for i, p := range probes {
		survivors[i] = p.Item
	}
	return &models.Section{
		ID:         sectionID(category),
		Label:      category.Name,
		CategoryID: category.ID,
		Items:      survivors,
	}, true
}

func sectionID(category models.Category) string {
	if slug := utils.Slugify(category.Name); slug != "" {
		return slug
	}
	return "genre-" + strconv.FormatInt(category.ID, 10)
}

// Package homepage assembles the hero banner and the genre rows shown on the
// front page.
package homepage

import (
	"context"

	"marquee/models"
)

//go:generate mockgen -destination=mock_catalog_test.go -package=homepage marquee/services/homepage Catalog

// Catalog is the subset of the TMDB client the homepage is built from.
type Catalog interface {
	Genres(ctx context.Context) ([]models.Category, error)
	Discover(ctx context.Context, genreID int64) ([]models.CatalogItem, error)
	Trending(ctx context.Context) ([]models.CatalogItem, error)
	Videos(ctx context.Context, kind models.MediaKind, id int64) ([]models.VideoRecord, error)
	ImageURL(path string) string
}
